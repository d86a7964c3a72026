package submitter

import "github.com/okian/formpost/internal/domain/model"

// Element identities the host page must provide.
const (
	FormID          = "mainForm"
	StatusElementID = "form-response"

	FieldName                 = "name"
	FieldEmail                = "email"
	FieldPhone                = "phone"
	FieldAddress              = "address"
	FieldProgrammingLanguages = "programming_languages"
	FieldTools                = "tools"
)

// Fields lists the input ids in declaration order.
var Fields = []string{ //nolint:gochecknoglobals // fixed form layout
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldAddress,
	FieldProgrammingLanguages,
	FieldTools,
}

// Event is the submit event raised by the host page.
type Event interface {
	// PreventDefault suppresses the host's own form navigation.
	PreventDefault()
}

// Form gives synchronous access to the current input values by element id.
type Form interface {
	FieldValue(id string) string
}

// StatusDisplay is the status element the outcome is written to.
type StatusDisplay interface {
	SetText(text string)
	SetStyle(style Style)
}

// Style is the visual treatment of the status element.
type Style struct {
	Color string
	Bold  bool
}

// Status styles.
var (
	SuccessStyle = Style{Color: "green", Bold: true} //nolint:gochecknoglobals // read-only
	FailureStyle = Style{Color: "red", Bold: true}   //nolint:gochecknoglobals // read-only
)

// ReadRecord reads the six fields from form at call time.
func ReadRecord(form Form) model.SubmissionRecord {
	return model.SubmissionRecord{
		Name:                 form.FieldValue(FieldName),
		Email:                form.FieldValue(FieldEmail),
		Phone:                form.FieldValue(FieldPhone),
		Address:              form.FieldValue(FieldAddress),
		ProgrammingLanguages: form.FieldValue(FieldProgrammingLanguages),
		Tools:                form.FieldValue(FieldTools),
	}
}

// FormValues is a map-backed Form.
type FormValues map[string]string

// FieldValue returns the value for id, empty when absent.
func (v FormValues) FieldValue(id string) string { return v[id] }
