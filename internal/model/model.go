package model

import "time"

type Registration struct {
	ID                   int64     `db:"id" json:"id"`
	ParticipantName      string    `db:"participant_name" json:"participant_name"`
	Email                string    `db:"email" json:"email"`
	Mobile               string    `db:"mobile" json:"mobile"`
	Institute            string    `db:"institute" json:"institute"`
	State                string    `db:"state" json:"state"`
	District             string    `db:"district" json:"district"`
	PciID                *string   `db:"pci_id" json:"pci_id"`
	ParticipationType    string    `db:"participation_type" json:"participation_type"`
	PresentationCategory *string   `db:"presentation_category" json:"presentation_category"`
	PresentationTitle    *string   `db:"presentation_title" json:"presentation_title"`
	Abstract             *string   `db:"abstract" json:"abstract"`
	PracticalApplication *string   `db:"practical_application" json:"practical_application"`
	PatentStatus         *string   `db:"patent_status" json:"patent_status"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// IsPresenter reports whether the record carries presentation details.
func (r Registration) IsPresenter() bool {
	return r.PresentationTitle != nil
}

const (
	TypePrincipal     = "principal"
	TypeTPO           = "tpo"
	TypeIndustryRep   = "industry_representative"
	TypeRegulatoryRep = "regulatory_representative"
	TypePGStudent     = "pg_student"
	TypeUGStudent     = "ug_student"
	TypePhDScholar    = "phd_scholar"
	TypeResearcher    = "researcher"
)

// NonPresenterTypes lists the roles that attend without presenting.
var NonPresenterTypes = map[string]struct{}{
	TypePrincipal:     {},
	TypeTPO:           {},
	TypeIndustryRep:   {},
	TypeRegulatoryRep: {},
}

// ParticipationLabels maps role tags to the names used in e-mails.
var ParticipationLabels = map[string]string{
	TypePrincipal:     "Principal",
	TypeTPO:           "Training & Placement Officer",
	TypeIndustryRep:   "Industry Representative",
	TypeRegulatoryRep: "Regulatory Representative",
	TypePGStudent:     "PG Student",
	TypeUGStudent:     "UG Student",
	TypePhDScholar:    "PhD Scholar",
	TypeResearcher:    "Researcher",
}
