package model

import (
	"fmt"
	"strings"
)

// CertificationLevel orders translator certifications from lowest to highest.
// A translator may claim a job whose required level is at or below their own.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type CertificationLevel string

const (
	// CertificationNone means no formal certification is held or required.
	CertificationNone CertificationLevel = "none"
	// CertificationCertified is the base state-authorised certification.
	CertificationCertified CertificationLevel = "certified"
	// CertificationHealth authorises healthcare interpretation.
	CertificationHealth CertificationLevel = "certified_health"
	// CertificationLaw authorises court and legal interpretation.
	CertificationLaw CertificationLevel = "certified_law"
)

// Valid returns true if the CertificationLevel is known. The zero value is
// treated as CertificationNone for convenience at the boundary.
func (l CertificationLevel) Valid() bool {
	switch l {
	case "", CertificationNone, CertificationCertified, CertificationHealth, CertificationLaw:
		return true
	}
	return false
}

// Rank maps the level onto the ordering none < certified < health < law.
func (l CertificationLevel) Rank() int {
	switch l {
	case CertificationCertified:
		return 1
	case CertificationHealth:
		return 2
	case CertificationLaw:
		return 3
	default:
		return 0
	}
}

// Covers reports whether a translator holding this level satisfies the required level.
func (l CertificationLevel) Covers(required CertificationLevel) bool {
	return l.Rank() >= required.Rank()
}

// UnmarshalText implements encoding.TextUnmarshaler for CertificationLevel.
func (l *CertificationLevel) UnmarshalText(text []byte) error {
	v := CertificationLevel(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid CertificationLevel: %q", v)
	}
	if v == "" {
		v = CertificationNone
	}
	*l = v
	return nil
}

// LanguagePair is a directed interpretation pair a translator works in.
type LanguagePair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Matches reports whether the pair serves the given job languages, in either direction.
func (p LanguagePair) Matches(from, to string) bool {
	if strings.EqualFold(p.From, from) && strings.EqualFold(p.To, to) {
		return true
	}
	return strings.EqualFold(p.From, to) && strings.EqualFold(p.To, from)
}

// Translator is the identity and capability profile of an interpreter, as
// resolved from the external user directory.
type Translator struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Pairs         []LanguagePair     `json:"pairs"`
	Certification CertificationLevel `json:"certification"`
	Town          string             `json:"town,omitempty"`
	AcceptsOnSite bool               `json:"accepts_on_site"`
	AcceptsPhone  bool               `json:"accepts_phone"`
	PushToken     *string            `json:"push_token,omitempty"`
	PhoneNumber   *string            `json:"phone_number,omitempty"`
}

// Customer is the identity of a booking customer, as resolved from the
// external user directory.
type Customer struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email,omitempty"`
	PushToken   *string `json:"push_token,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// UserKind distinguishes directory identities when listing jobs for a user.
type UserKind string

const (
	// UserKindCustomer identifies a booking customer.
	UserKindCustomer UserKind = "customer"
	// UserKindTranslator identifies an interpreter.
	UserKindTranslator UserKind = "translator"
)
