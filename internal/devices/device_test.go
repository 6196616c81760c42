package devices

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Mini":            "mini",
		"Dev Machines":    "dev-machines",
		"  My--Server!!":  "my-server",
		"pi@home (attic)": "pi-home-attic",
		"___":             "",
		"Ünïcode Box":     "n-code-box",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPublicRedactsToken(t *testing.T) {
	d := Device{
		ID:      "mini",
		Name:    "Mini",
		Enabled: true,
		HTTP:    &HTTPConn{URL: "http://mini:3456", AuthToken: "secret"},
	}
	p := d.Public()
	if !p.HasAuthToken {
		t.Fatal("expected hasAuthToken=true")
	}
	if p.URL != "http://mini:3456" {
		t.Fatalf("url lost: %+v", p)
	}
	// The raw token must not appear anywhere in the public form.
	if p.SSHHost != "" || p.IsLocal {
		t.Fatalf("unexpected fields: %+v", p)
	}
}

func TestConnectionUnionInvariant(t *testing.T) {
	if (Device{HTTP: &HTTPConn{URL: "http://x"}}).Valid() != true {
		t.Fatal("http-only device should be valid")
	}
	if (Device{SSH: &SSHConn{Host: "x"}}).Valid() != true {
		t.Fatal("ssh-only device should be valid")
	}
	if (Device{}).Valid() {
		t.Fatal("device without connection should be invalid")
	}
	if (Device{HTTP: &HTTPConn{}, SSH: &SSHConn{}}).Valid() {
		t.Fatal("device with both connections should be invalid")
	}
}

func TestSyntheticLocalDevice(t *testing.T) {
	p := Local("", "")
	if p.ID != LocalID || !p.Enabled || !p.IsLocal {
		t.Fatalf("unexpected local device: %+v", p)
	}
	if p.Name == "" {
		t.Fatal("local device needs a default display name")
	}
	named := Local("Attic Pi", "pi")
	if named.Name != "Attic Pi" || named.Icon != "pi" {
		t.Fatalf("identity not applied: %+v", named)
	}
}
