package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/suhastanajipatil1735-oss/super-management/pkg/slogx"
)

// Airtable field names, fixed by the base schema.
const (
	airtableFieldName       = "Institute / Academy Name"
	airtableFieldMobile     = "Mobile Number"
	airtableFieldAcceptance = "Acceptance"
	airtableFieldPause      = "Subscription Pause"
	airtableFieldRequest    = "Subscription Request"

	airtableRequestSent = "Subscription Request Send"
)

// AirtableAuthority approves accounts out of a single Airtable table, one
// record per phone number.
type AirtableAuthority struct {
	client *resty.Client
	table  string
}

// NewAirtableAuthority builds a binding against baseURL (the Airtable API
// root, overridable for tests), scoped to one base and table.
func NewAirtableAuthority(baseURL, token, baseID, table string) *AirtableAuthority {
	client := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s", baseURL, baseID)).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &AirtableAuthority{client: client, table: table}
}

type airtableRecord struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

type airtableList struct {
	Records []struct {
		ID     string `json:"id"`
		Fields struct {
			Acceptance Flag `json:"Acceptance"`
			Pause      Flag `json:"Subscription Pause"`
		} `json:"fields"`
	} `json:"records"`
}

func (a *AirtableAuthority) UpsertProfile(ctx context.Context, p Profile) error {
	recordID, _, err := a.find(ctx, p.Phone)
	if err != nil && !errors.Is(err, ErrProfileMissing) {
		return err
	}

	if recordID != "" {
		// Only the display name is ours to update. Approval flags belong
		// to the operator editing the base.
		body := airtableRecord{Fields: map[string]any{
			airtableFieldName: p.Name,
		}}
		resp, err := a.client.R().
			SetContext(ctx).
			SetBody(body).
			Patch(fmt.Sprintf("/%s/%s", a.table, recordID))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: airtable update returned %s", ErrUnavailable, resp.Status())
		}
		return nil
	}

	body := map[string]any{
		"records": []airtableRecord{{
			Fields: map[string]any{
				airtableFieldName:       p.Name,
				airtableFieldMobile:     p.Phone,
				airtableFieldAcceptance: "False",
				airtableFieldPause:      "No",
			},
		}},
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/" + a.table)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: airtable create returned %s", ErrUnavailable, resp.Status())
	}

	slogx.FromContext(ctx).Debug("registered profile with airtable",
		slog.String("phone", p.Phone),
	)
	return nil
}

func (a *AirtableAuthority) SubmitRequest(ctx context.Context, p Profile) error {
	recordID, _, err := a.find(ctx, p.Phone)
	if err != nil {
		return err
	}

	body := airtableRecord{Fields: map[string]any{
		airtableFieldRequest: airtableRequestSent,
	}}
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(body).
		Patch(fmt.Sprintf("/%s/%s", a.table, recordID))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: airtable request update returned %s", ErrUnavailable, resp.Status())
	}
	return nil
}

func (a *AirtableAuthority) FetchStatus(ctx context.Context, phone string) (Status, error) {
	_, status, err := a.find(ctx, phone)
	if err != nil {
		return Status{}, err
	}
	return status, nil
}

func (a *AirtableAuthority) find(ctx context.Context, phone string) (string, Status, error) {
	var list airtableList
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("filterByFormula", fmt.Sprintf("{%s}='%s'", airtableFieldMobile, phone)).
		SetResult(&list).
		Get("/" + a.table)
	if err != nil {
		return "", Status{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return "", Status{}, fmt.Errorf("%w: airtable search returned %s", ErrUnavailable, resp.Status())
	}
	if len(list.Records) == 0 {
		return "", Status{}, ErrProfileMissing
	}

	rec := list.Records[0]
	return rec.ID, Status{
		Accepted: rec.Fields.Acceptance.Bool(),
		Paused:   rec.Fields.Pause.Bool(),
	}, nil
}
