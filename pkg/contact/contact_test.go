package contact

import (
	"encoding/json"
	"testing"
)

func TestSocialLinksFillFirstWins(t *testing.T) {
	var s SocialLinks

	if !s.Fill("facebook", "https://facebook.com/primeira") {
		t.Fatal("first fill should succeed")
	}
	if s.Fill("facebook", "https://facebook.com/segunda") {
		t.Fatal("second fill for the same platform should be discarded")
	}
	if s.Facebook == nil || *s.Facebook != "https://facebook.com/primeira" {
		t.Fatalf("facebook = %v, want first URL kept", s.Facebook)
	}

	if s.Fill("myspace", "https://myspace.com/x") {
		t.Fatal("unknown platform should not be stored")
	}
	if s.Fill("instagram", "") {
		t.Fatal("empty URL should not be stored")
	}
}

func TestSocialLinksPlatformsRoundTrip(t *testing.T) {
	var s SocialLinks
	for _, platform := range Platforms {
		url := "https://" + platform + ".com/empresa"
		if !s.Fill(platform, url) {
			t.Errorf("Fill(%q) rejected", platform)
			continue
		}
		if got := s.Link(platform); got == nil || *got != url {
			t.Errorf("Link(%q) = %v, want %q", platform, got, url)
		}
	}
}

func TestContactsEmptyWireShape(t *testing.T) {
	data, err := json.Marshal(NewContacts())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"telefones":[],"whatsapp":null,"emails":[],"endereco":null,` +
		`"redes_sociais":{"facebook":null,"instagram":null,"linkedin":null,"youtube":null}}`
	if string(data) != want {
		t.Fatalf("empty contacts JSON = %s, want %s", data, want)
	}
}

func TestContactsPopulatedWireShape(t *testing.T) {
	c := NewContacts()
	c.Phones = append(c.Phones, "5511999999999")
	link := "https://api.whatsapp.com/send?phone=5511999999999"
	c.WhatsApp = &link
	c.Emails = append(c.Emails, "contato@empresa.com")
	addr := "Rua Exemplo, 123 - Bairro - CEP 00000-000"
	c.Address = &addr
	c.Social.Fill("instagram", "https://instagram.com/empresa")

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Contacts
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back.Phones) != 1 || back.Phones[0] != "5511999999999" {
		t.Fatalf("telefones = %v", back.Phones)
	}
	if back.WhatsApp == nil || *back.WhatsApp != link {
		t.Fatalf("whatsapp = %v", back.WhatsApp)
	}
	if back.Social.Instagram == nil || *back.Social.Instagram != "https://instagram.com/empresa" {
		t.Fatalf("instagram = %v", back.Social.Instagram)
	}
	if back.Social.Facebook != nil {
		t.Fatalf("facebook should stay null, got %v", *back.Social.Facebook)
	}
}
