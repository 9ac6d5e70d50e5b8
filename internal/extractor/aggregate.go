package extractor

import (
	"github.com/rs/zerolog"

	"cnpj-contatos/pkg/contact"
)

// WhatsAppLinkPrefix builds click-to-chat deep links from bare numbers.
const WhatsAppLinkPrefix = "https://api.whatsapp.com/send?phone="

// Aggregate folds extractor findings into a single Contacts bundle,
// optionally on top of pre-filled social links. Dedup and first-match-wins
// rules live here; the extractors already normalized each value.
//
// The WhatsApp number doubles as a regular phone so it survives even when
// the page never repeats it outside the label.
func Aggregate(findings []contact.Finding, seed *contact.SocialLinks, log zerolog.Logger) contact.Contacts {
	c := contact.NewContacts()
	if seed != nil {
		c.Social = *seed
	}

	seenPhones := make(map[string]bool)
	seenEmails := make(map[string]bool)

	addPhone := func(number string) {
		if number == "" || seenPhones[number] {
			return
		}
		seenPhones[number] = true
		c.Phones = append(c.Phones, number)
	}

	for _, f := range findings {
		switch f.Kind {
		case contact.KindWhatsApp:
			if c.WhatsApp != nil {
				break
			}
			link := WhatsAppLinkPrefix + f.Value
			c.WhatsApp = &link
			addPhone(f.Value)
		case contact.KindPhone:
			addPhone(f.Value)
		case contact.KindEmail:
			if f.Value == "" || seenEmails[f.Value] {
				break
			}
			seenEmails[f.Value] = true
			c.Emails = append(c.Emails, f.Value)
		case contact.KindSocial:
			if c.Social.Fill(f.Meta["platform"], f.Value) {
				log.Info().Str("rede", f.Meta["platform"]).Str("url", f.Value).Msg("Rede social detectada")
			}
		case contact.KindAddress:
			if c.Address == nil && f.Value != "" {
				value := f.Value
				c.Address = &value
			}
		}
	}

	return c
}
