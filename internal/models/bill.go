package models

import "time"

// Status is the hand-off state of a bill.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusSentToAG  Status = "Sent to AG"
	StatusProcessed Status = "Processed"
)

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSentToAG, StatusProcessed:
		return true
	}
	return false
}

// BillType tags a bill in the cross-kind AG Office queue.
type BillType string

const (
	BillTypeTransportation BillType = "transportation"
	BillTypeGrinding       BillType = "grinding"
)

// Lifecycle is the state shared by both bill kinds.
type Lifecycle struct {
	Status Status `json:"status"`

	// SentAt is set only on the Draft -> Sent to AG transition.
	SentAt *time.Time `json:"agOfficeSentAt"`

	// ProcessedAt is set only on the Sent to AG -> Processed transition.
	ProcessedAt *time.Time `json:"agOfficeProcessedAt"`
}

// Current returns the bill's status. Bills saved before the hand-off
// existed have none and are drafts.
func (l Lifecycle) Current() Status {
	if l.Status == "" {
		return StatusDraft
	}
	return l.Status
}

// Attachment is a file stored inline with a bill.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`

	// DataURL is the base64 data URL of the file. It is the only field
	// dropped when a bill is too large to persist.
	DataURL string `json:"dataUrl"`
}

// CustomDeduction is a free-text deduction entered on a bill.
type CustomDeduction struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// CertificationPoint is one line of the certificate printed under a bill.
type CertificationPoint struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// stripPayloads returns a copy of attachments with every DataURL cleared.
func stripPayloads(attachments []Attachment) []Attachment {
	if attachments == nil {
		return nil
	}
	out := make([]Attachment, len(attachments))
	for i, a := range attachments {
		out[i] = Attachment{ID: a.ID, Name: a.Name, Type: a.Type}
	}
	return out
}
