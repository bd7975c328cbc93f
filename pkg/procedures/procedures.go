// Package procedures builds payloads of procedures run by the ML database service.
//
// Each payload type maps its fields to the JSON keys that the service expects.
// Optional fields are omitted when they are not set.
// Use Procedure() to get the body submitted to the gateway.
package procedures

const (
	TypeTransform            = "transform"
	TypeImportText           = "import.text"
	TypeExportCSV            = "export.csv"
	TypeClassifierTrain      = "classifier.train"
	TypeClassifierTest       = "classifier.test"
	TypeClassifierExperiment = "classifier.experiment"
)

// Procedure is a body of "PUT /v1/procedures/:id".
type Procedure struct {
	Type   string `json:"type"`
	Params any    `json:"params"`
}

// Transform selects rows with a query and writes them into an output dataset.
type Transform struct {
	// query to select rows to be transformed.
	InputData string `json:"inputData"`

	OutputDataset OutputDataset `json:"outputDataset"`

	// If true, the procedure is run immediately at creation.
	RunOnCreation bool `json:"runOnCreation"`
}

func (t Transform) Procedure() Procedure {
	t.OutputDataset = t.OutputDataset.Normalize()
	return Procedure{Type: TypeTransform, Params: t}
}

// ImportText loads a text (CSV-like) file into a dataset.
type ImportText struct {
	DataFileURL   string        `json:"dataFileUrl"`
	OutputDataset OutputDataset `json:"outputDataset"`

	// headers for a file without header line
	Headers []string `json:"headers,omitempty"`

	QuoteChar string `json:"quotechar,omitempty"`
	Delimiter string `json:"delimiter,omitempty"`

	// maximum number of lines to be processed
	Limit *int `json:"limit,omitempty"`

	// number of lines to be skipped, excluding header
	Offset *int `json:"offset,omitempty"`

	// us-ascii, ascii, latin1, iso8859-1, utf8 or utf-8
	Encoding string `json:"encoding,omitempty"`

	IgnoreBadLines               *bool  `json:"ignoreBadLines,omitempty"`
	ReplaceInvalidCharactersWith string `json:"replaceInvalidCharactersWith,omitempty"`

	Select    string `json:"select,omitempty"`
	Where     string `json:"where,omitempty"`
	Named     string `json:"named,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`

	RunOnCreation *bool `json:"runOnCreation,omitempty"`
}

func (it ImportText) Procedure() Procedure {
	it.OutputDataset = it.OutputDataset.Normalize()
	return Procedure{Type: TypeImportText, Params: it}
}

// ExportCSV writes a result of query into a CSV file on the server side.
//
// When the file already exists, it is overwritten.
type ExportCSV struct {
	ExportData  string `json:"exportData"`
	DataFileURL string `json:"dataFileUrl"`

	Headers   *bool  `json:"headers,omitempty"`
	Delimiter string `json:"delimiter,omitempty"`
	QuoteChar string `json:"quoteChar,omitempty"`

	RunOnCreation *bool `json:"runOnCreation,omitempty"`
}

func (ec ExportCSV) Procedure() Procedure {
	return Procedure{Type: TypeExportCSV, Params: ec}
}
