package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"pga/internal"
	"pga/internal/config"
)

const (
	providerName   = "gmail"
	attachmentOnly = "has:attachment filename:pdf"
)

type Connector struct {
	service *gmail.Service
	query   string
}

func NewConnector(ctx context.Context, cfg config.Config) (*Connector, error) {
	for _, req := range []struct{ name, value string }{
		{"GMAIL_CLIENT_ID", cfg.GmailClientID},
		{"GMAIL_CLIENT_SECRET", cfg.GmailClientSecret},
		{"GMAIL_REFRESH_TOKEN", cfg.GmailRefreshToken},
	} {
		if err := cfg.Require(req.name, req.value); err != nil {
			return nil, err
		}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GmailRedirectURI,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GmailRefreshToken})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &Connector{service: svc, query: searchQuery(cfg.MailSubjectFilter)}, nil
}

func searchQuery(subjectFilter string) string {
	subjectFilter = strings.TrimSpace(subjectFilter)
	if subjectFilter == "" {
		return attachmentOnly
	}
	if strings.ContainsAny(subjectFilter, " \t") {
		subjectFilter = `"` + subjectFilter + `"`
	}
	return attachmentOnly + " subject:" + subjectFilter
}

func (c *Connector) FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error) {
	listCall := c.service.Users.Messages.List("me").Q(c.query).Context(ctx)
	if label != "" {
		listCall = listCall.LabelIds(label)
	}
	if max > 0 {
		listCall = listCall.MaxResults(int64(max))
	}
	listResp, err := listCall.Do()
	if err != nil {
		return nil, fmt.Errorf("gmail list: %w", err)
	}

	out := make([]internal.FetchedMailMessage, 0, len(listResp.Messages))
	for _, ref := range listResp.Messages {
		if ref.Id == "" {
			continue
		}
		msg, err := c.service.Users.Messages.Get("me", ref.Id).Format("raw").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("gmail get %s: %w", ref.Id, err)
		}
		if msg.Raw == "" {
			continue
		}
		fetched, err := toFetched(msg)
		if err != nil {
			return nil, err
		}
		out = append(out, fetched)
	}
	return out, nil
}

func toFetched(msg *gmail.Message) (internal.FetchedMailMessage, error) {
	raw, err := decodeBase64URL(msg.Raw)
	if err != nil {
		return internal.FetchedMailMessage{}, err
	}

	fetched := internal.FetchedMailMessage{
		Provider:   providerName,
		MessageID:  msg.Id,
		ReceivedAt: time.Now().UTC().Format(time.RFC3339),
		Raw:        raw,
	}
	if msg.InternalDate > 0 {
		fetched.ReceivedAt = time.UnixMilli(msg.InternalDate).UTC().Format(time.RFC3339)
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return fetched, nil
	}
	fetched.Subject = env.GetHeader("Subject")
	fetched.From = env.GetHeader("From")
	if id := env.GetHeader("Message-ID"); id != "" {
		fetched.MessageID = id
	}
	return fetched, nil
}

func decodeBase64URL(input string) ([]byte, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	decoded, err = base64.URLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("decode gmail raw payload: %w", err)
}
