package models

// EmailDomainSettings holds the domain used when generating account emails.
type EmailDomainSettings struct {
	Domain string `json:"domain"`
}
