package domain

type ImportMode string

const (
	ImportPreview ImportMode = "preview"
	ImportCommit  ImportMode = "commit"
)

type ImportOptions struct {
	Mode                     ImportMode
	UpdateExisting           bool
	CreateMissingCredentials bool
}

type ImportRowStatus string

const (
	ImportCreated           ImportRowStatus = "created"
	ImportUpdated           ImportRowStatus = "updated"
	ImportDuplicateInFile   ImportRowStatus = "duplicate_in_file"
	ImportDuplicateExisting ImportRowStatus = "duplicate_existing"
	ImportInvalid           ImportRowStatus = "invalid"
)

type ImportRowResult struct {
	Line    int             `json:"line"`
	Name    string          `json:"name"`
	CPF     string          `json:"cpf,omitempty"`
	Status  ImportRowStatus `json:"status"`
	Message string          `json:"message,omitempty"`
}

// ImportReport describes what an import did, or would do in preview mode.
type ImportReport struct {
	BatchID            string            `json:"batch_id"`
	EventID            uint              `json:"event_id"`
	Mode               ImportMode        `json:"mode"`
	TotalRows          int               `json:"total_rows"`
	Created            int               `json:"created"`
	Updated            int               `json:"updated"`
	Duplicates         int               `json:"duplicates"`
	Invalid            int               `json:"invalid"`
	Rows               []ImportRowResult `json:"rows"`
	UnknownCredentials []string          `json:"unknown_credentials"`
	CreatedCredentials []string          `json:"created_credentials"`
}

// Add appends a row result and updates the totals.
func (r *ImportReport) Add(row ImportRowResult) {
	r.Rows = append(r.Rows, row)
	switch row.Status {
	case ImportCreated:
		r.Created++
	case ImportUpdated:
		r.Updated++
	case ImportDuplicateInFile, ImportDuplicateExisting:
		r.Duplicates++
	case ImportInvalid:
		r.Invalid++
	}
}
