package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"cv-apply/internal/domain"
	"cv-apply/internal/model"
	"cv-apply/pkg/attachment"
	"cv-apply/pkg/salesforce"

	"github.com/google/uuid"
)

type SubmissionsRepo interface {
	Save(ctx context.Context, a *domain.SubmissionAttempt) error
}

// Application is the input for one submission: which job, which optional
// domain variant, the candidate fields and the CV file to attach.
type Application struct {
	JobID     string                    `json:"jobId,omitempty"`
	Domain    string                    `json:"domain,omitempty"`
	Applicant domain.Applicant          `json:"applicant"`
	CVPath    string                    `json:"cvPath,omitempty"`
	Tracking  []model.TrackingAttribute `json:"tracking,omitempty"`
	Status    string                    `json:"status,omitempty"`
}

type Submitter struct {
	client *salesforce.Client
	repo   SubmissionsRepo
	cfg    salesforce.Config
}

func NewSubmitter(client *salesforce.Client, repo SubmissionsRepo, cfg salesforce.Config) *Submitter {
	return &Submitter{client: client, repo: repo, cfg: cfg}
}

// BuildPayload assembles the apexrest payload for one application. The CV
// attachment value is expected to be base64 already.
func BuildPayload(app Application, encodedCV string) *model.ApplicationPayload {
	fileName := "cv.pdf"
	if app.CVPath != "" {
		fileName = filepath.Base(app.CVPath)
	}
	status := app.Status
	if status == "" {
		status = "Applied"
	}
	return &model.ApplicationPayload{
		SetAPIName: "msf__Job_Application__c",
		Fields: map[string]model.FieldValue{
			"msf__First_Name__c": {Value: app.Applicant.FirstName},
			"msf__Last_Name__c":  {Value: app.Applicant.LastName},
			"msf__Email__c":      {Value: app.Applicant.Email},
			"msf__Phone__c":      {Value: app.Applicant.Phone},
			"msf__CV__c":         {Value: encodedCV, FileName: fileName},
		},
		TrackingAttributes: app.Tracking,
		Status:             status,
		ExternalSource:     true,
	}
}

// AcquireToken performs the client-credentials exchange. The caller is
// expected to abort the run on error; a single token is fetched once per
// run and reused for every submission in it.
func (s *Submitter) AcquireToken(ctx context.Context) (string, error) {
	return s.client.Authenticate(ctx, s.cfg.ClientID, s.cfg.ClientSecret)
}

func errorResult(domainParam string, status int, message interface{}) model.SubmissionResult {
	return model.SubmissionResult{
		Domain: domainParam,
		Err:    &model.ErrorRecord{Error: true, Status: status, Message: message},
	}
}

// decodeBody parses a response body as JSON where possible, otherwise the
// raw text is passed through.
func decodeBody(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	var out interface{}
	if err := json.Unmarshal(b, &out); err == nil {
		return out
	}
	return string(b)
}

// Submit issues exactly one POST for the given application. Failures are
// converted into an error record at this boundary; nothing propagates as a
// crash past it.
func (s *Submitter) Submit(ctx context.Context, token string, app Application) model.SubmissionResult {
	jobID := app.JobID
	if jobID == "" {
		jobID = s.cfg.JobID
	}

	encoded := attachment.EncodeFile(app.CVPath)
	payload := BuildPayload(app, encoded)
	if err := model.ValidatePayload(payload); err != nil {
		return errorResult(app.Domain, 0, err.Error())
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errorResult(app.Domain, 0, err.Error())
	}

	status, respBytes, err := s.client.SubmitApplication(ctx, token, jobID, app.Domain, body)
	var result model.SubmissionResult
	switch {
	case err != nil:
		result = errorResult(app.Domain, status, err.Error())
	case status < 200 || status >= 300:
		result = errorResult(app.Domain, status, decodeBody(respBytes))
	default:
		result = model.SubmissionResult{Domain: app.Domain, Body: decodeBody(respBytes)}
	}

	s.persist(ctx, jobID, app.Domain, status, result)
	return result
}

// persist records the attempt best-effort; a missing repo or DB never
// affects the submission result.
func (s *Submitter) persist(ctx context.Context, jobID, domainParam string, httpStatus int, result model.SubmissionResult) {
	if s.repo == nil {
		return
	}
	attempt := &domain.SubmissionAttempt{
		ID:         uuid.New(),
		JobID:      jobID,
		Domain:     domainParam,
		Status:     "succeeded",
		HTTPStatus: httpStatus,
		Metadata:   map[string]interface{}{},
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if result.Err != nil {
		attempt.Status = "failed"
		attempt.Metadata["message"] = result.Err.Message
	}
	if err := s.repo.Save(ctx, attempt); err != nil {
		log.Printf("warning: failed to save submission attempt: %v", err)
	}
}

// RunDomainSweep submits once per candidate domain value, strictly in list
// order. Include "" in domains for the explicit no-parameter case. A failed
// attempt is reported and the sweep moves on to the next candidate.
func (s *Submitter) RunDomainSweep(ctx context.Context, token string, base Application, domains []string) []model.SubmissionResult {
	results := make([]model.SubmissionResult, 0, len(domains))
	for i, d := range domains {
		app := base
		app.Domain = d
		fmt.Printf("sweep: attempt %d/%d domain=%q\n", i+1, len(domains), d)
		res := s.Submit(ctx, token, app)
		if res.OK() {
			fmt.Printf("sweep: domain=%q succeeded\n", d)
		} else {
			fmt.Printf("sweep: domain=%q failed status=%d message=%v\n", d, res.Err.Status, res.Err.Message)
		}
		results = append(results, res)
	}
	return results
}

// Run is the full pipeline for one sweep: acquire the single run token,
// then sweep the domains with it. Token failure aborts the run.
func (s *Submitter) Run(ctx context.Context, base Application, domains []string) ([]model.SubmissionResult, error) {
	token, err := s.AcquireToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("token acquisition failed: %w", err)
	}
	return s.RunDomainSweep(ctx, token, base, domains), nil
}
