package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// SheetsAuthority approves accounts out of a spreadsheet fronted by a
// small web-app script. The script multiplexes on an "action" field.
type SheetsAuthority struct {
	client *resty.Client
}

// NewSheetsAuthority builds a binding against the deployed script URL.
func NewSheetsAuthority(scriptURL string) *SheetsAuthority {
	client := resty.New().
		SetBaseURL(scriptURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &SheetsAuthority{client: client}
}

type sheetStatus struct {
	Mobile     string `json:"mobile"`
	Acceptance Flag   `json:"acceptance"`
	Pause      Flag   `json:"pause"`
}

func (s *SheetsAuthority) UpsertProfile(ctx context.Context, p Profile) error {
	body := map[string]any{
		"action":        "syncUser",
		"mobile":        p.Phone,
		"instituteName": p.Name,
		"acceptance":    "False",
		"pause":         "No",
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: sheet sync returned %s", ErrUnavailable, resp.Status())
	}
	return nil
}

func (s *SheetsAuthority) SubmitRequest(ctx context.Context, p Profile) error {
	body := map[string]any{
		"action":        "updateRequest",
		"mobile":        p.Phone,
		"instituteName": p.Name,
		"requestStatus": "send request",
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: sheet request returned %s", ErrUnavailable, resp.Status())
	}
	return nil
}

func (s *SheetsAuthority) FetchStatus(ctx context.Context, phone string) (Status, error) {
	var status sheetStatus
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("action", "getStatus").
		SetQueryParam("mobile", phone).
		SetResult(&status).
		Get("")
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode() == 404 {
		return Status{}, ErrProfileMissing
	}
	if resp.IsError() {
		return Status{}, fmt.Errorf("%w: sheet status returned %s", ErrUnavailable, resp.Status())
	}
	// The script answers 200 with an empty row when the number is unknown.
	if status.Mobile == "" {
		return Status{}, ErrProfileMissing
	}

	return Status{
		Accepted: status.Acceptance.Bool(),
		Paused:   status.Pause.Bool(),
	}, nil
}
