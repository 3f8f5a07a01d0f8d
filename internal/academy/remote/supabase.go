package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// SupabaseAuthority approves accounts out of a hosted Postgres exposed
// over its REST gateway, table "profiles", keyed by mobile.
type SupabaseAuthority struct {
	client *resty.Client
}

// NewSupabaseAuthority builds a binding against projectURL using the
// publishable API key.
func NewSupabaseAuthority(projectURL, apiKey string) *SupabaseAuthority {
	client := resty.New().
		SetBaseURL(projectURL + "/rest/v1").
		SetHeader("apikey", apiKey).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &SupabaseAuthority{client: client}
}

type supabaseProfile struct {
	Mobile        string `json:"mobile"`
	InstituteName string `json:"institute_name,omitempty"`
	RequestSent   bool   `json:"request_sent,omitempty"`
	Acceptance    Flag   `json:"acceptance,omitempty"`
	Paused        Flag   `json:"paused,omitempty"`
}

func (s *SupabaseAuthority) UpsertProfile(ctx context.Context, p Profile) error {
	// Merge on mobile so approval flags set by the operator survive
	// repeated logins.
	body := supabaseProfile{Mobile: p.Phone, InstituteName: p.Name}
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("on_conflict", "mobile").
		SetHeader("Prefer", "resolution=merge-duplicates").
		SetBody(body).
		Post("/profiles")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: supabase upsert returned %s", ErrUnavailable, resp.Status())
	}
	return nil
}

func (s *SupabaseAuthority) SubmitRequest(ctx context.Context, p Profile) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("mobile", "eq."+p.Phone).
		SetHeader("Prefer", "return=representation").
		SetBody(map[string]any{"request_sent": true}).
		Patch("/profiles")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: supabase update returned %s", ErrUnavailable, resp.Status())
	}
	return nil
}

func (s *SupabaseAuthority) FetchStatus(ctx context.Context, phone string) (Status, error) {
	var rows []supabaseProfile
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("mobile", "eq."+phone).
		SetQueryParam("select", "*").
		SetResult(&rows).
		Get("/profiles")
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return Status{}, fmt.Errorf("%w: supabase select returned %s", ErrUnavailable, resp.Status())
	}
	if len(rows) == 0 {
		return Status{}, ErrProfileMissing
	}

	return Status{
		Accepted: rows[0].Acceptance.Bool(),
		Paused:   rows[0].Paused.Bool(),
	}, nil
}
