package model

// Go models that match application.schema.json, the payload accepted by the
// apexrest job Apply endpoint.

// FieldValue is one entry in the payload fields map. Plain fields carry only
// a value; attachment fields additionally carry the file name, with the
// value holding the base64 contents.
type FieldValue struct {
	Value    string `json:"value"`
	FileName string `json:"fileName,omitempty"`
}

type TrackingAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ApplicationPayload struct {
	SetAPIName         string                `json:"setApiName"`
	Fields             map[string]FieldValue `json:"fields"`
	TrackingAttributes []TrackingAttribute   `json:"trackingAttributes,omitempty"`
	Status             string                `json:"status,omitempty"`
	ExternalSource     bool                  `json:"externalSource,omitempty"`
}

// ErrorRecord is the locally constructed result for a failed submission.
// Status is zero when the failure happened before any HTTP status was
// available (transport error, local validation).
type ErrorRecord struct {
	Error   bool        `json:"error"`
	Status  int         `json:"status,omitempty"`
	Message interface{} `json:"message"`
}

// SubmissionResult is what one submission attempt yields: the remote body
// verbatim on success, or an error record. Exactly one of Body/Err is set.
type SubmissionResult struct {
	Domain string       `json:"domain"`
	Body   interface{}  `json:"body,omitempty"`
	Err    *ErrorRecord `json:"err,omitempty"`
}

// OK reports whether the attempt reached the remote service and got a 2xx.
func (r SubmissionResult) OK() bool { return r.Err == nil }
