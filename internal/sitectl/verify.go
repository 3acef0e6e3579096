package sitectl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Verifier checks that a switched site answers HTTP requests.
type Verifier struct {
	client *http.Client
	// URLFor maps a target to the URL probed. Defaults to http://<host>/.
	URLFor func(Target) string
}

func NewVerifier(timeout time.Duration) *Verifier {
	return &Verifier{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
		URLFor: func(t Target) string { return "http://" + t.Host + "/" },
	}
}

// Check fails unless the site responds with a status below 500.
func (v *Verifier) Check(ctx context.Context, t Target) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.URLFor(t), nil)
	if err != nil {
		return err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s answered %s", req.URL, resp.Status)
	}
	return nil
}
