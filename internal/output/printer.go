// Package output renders flow progress, results and failures for the operator.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/brizzai/swagger-token/internal/config"
	"github.com/brizzai/swagger-token/internal/flow"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// TokenOutput is the machine readable result
type TokenOutput struct {
	AccessToken  string     `json:"accessToken" yaml:"accessToken"`
	RefreshToken string     `json:"refreshToken,omitempty" yaml:"refreshToken,omitempty"`
	NewUser      *bool      `json:"newUser,omitempty" yaml:"newUser,omitempty"`
	Claims       *TokenInfo `json:"claims,omitempty" yaml:"claims,omitempty"`
}

// Printer writes results to out and progress and failures to info. For the
// json and yaml formats info is stderr so stdout stays parseable.
type Printer struct {
	out    io.Writer
	info   io.Writer
	format string
}

func NewPrinter(cfg *config.OutputConfig) *Printer {
	format := FormatText
	if cfg != nil && cfg.Format != "" {
		format = cfg.Format
	}
	info := io.Writer(os.Stdout)
	if format != FormatText {
		info = os.Stderr
	}
	return NewPrinterTo(os.Stdout, info, format)
}

func NewPrinterTo(out, info io.Writer, format string) *Printer {
	return &Printer{out: out, info: info, format: format}
}

// OnState implements flow.Observer
func (p *Printer) OnState(state flow.State, detail string) {
	switch state {
	case flow.StateListenerStarting:
		p.infof("Starting local server on http://%s ...", detail)
	case flow.StateWaitingForRedirect:
		p.infof("Opening the authorize URL in your browser. Log in if asked.")
		pterm.Fprintln(p.info, "  "+detail)
	case flow.StateExchangingToken:
		p.infof("Code received. Exchanging it for a provider access token...")
	case flow.StateLoggingIntoBackend:
		p.infof("Calling the backend social login with the provider access token...")
	}
}

// OnBrowserError implements flow.Observer
func (p *Printer) OnBrowserError(url string, err error) {
	pterm.Fprintln(p.info, pterm.Warning.Sprintf("Could not open a browser (%v). Open this URL manually:", err))
	pterm.Fprintln(p.info, "  "+url)
}

func (p *Printer) infof(format string, args ...interface{}) {
	pterm.Fprintln(p.info, pterm.Info.Sprintf(format, args...))
}

// PrintResult writes the service token in the configured format
func (p *Printer) PrintResult(res *flow.Result) error {
	claims, _ := DescribeToken(res.ServiceToken)
	tokenOut := TokenOutput{
		AccessToken:  res.ServiceToken,
		RefreshToken: res.RefreshToken,
		NewUser:      res.NewUser,
		Claims:       claims,
	}

	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(tokenOut)
	case FormatYAML:
		enc := yaml.NewEncoder(p.out)
		defer enc.Close()
		return enc.Encode(tokenOut)
	case FormatText, "":
		p.printText(tokenOut)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", p.format)
	}
}

func (p *Printer) printText(t TokenOutput) {
	pterm.Fprintln(p.out)
	pterm.Fprintln(p.out, pterm.LightGreen("--- Service JWT accessToken (for Swagger Authorize) ---"))
	// The token stays unstyled so it can be copied as is
	fmt.Fprintln(p.out, t.AccessToken)
	pterm.Fprintln(p.out, pterm.LightGreen("---"))

	if t.RefreshToken != "" || t.NewUser != nil {
		pterm.Fprintln(p.out, "(refreshToken and newUser are in the response; use accessToken above in Swagger.)")
	}
	if t.Claims != nil {
		if t.Claims.Subject != "" {
			pterm.Fprintln(p.out, "Subject: "+t.Claims.Subject)
		}
		if t.Claims.ExpiresAt != nil {
			pterm.Fprintln(p.out, "Expires: "+t.Claims.ExpiresAt.Local().Format("2006-01-02 15:04:05 MST"))
		}
	}
	pterm.Fprintln(p.out, "In Swagger UI: Authorize → paste the token (or Bearer <token> if required).")
}

// PrintError explains a failed run
func (p *Printer) PrintError(err error) {
	var backendErr *flow.BackendError
	if errors.As(err, &backendErr) {
		p.printBackendError(backendErr)
		return
	}

	pterm.Fprintln(p.info, pterm.Error.Sprint(err))
	switch {
	case errors.Is(err, flow.ErrBind):
		pterm.Fprintln(p.info, "Another process holds the callback port. Stop it or pass --port and --redirect-uri.")
	case errors.Is(err, flow.ErrNoCodeReceived):
		pterm.Fprintln(p.info, "No authorization code was received. Check that you completed login.")
	case errors.Is(err, flow.ErrTimeout):
		pterm.Fprintln(p.info, "Login was not completed in time. Run the command again.")
	case errors.Is(err, flow.ErrExchange):
		pterm.Fprintln(p.info, "Failed to get a provider access token.")
	}
}

func (p *Printer) printBackendError(e *flow.BackendError) {
	if e.Err != nil {
		pterm.Fprintln(p.info, pterm.Error.Sprintf("Backend login request failed: %v", e.Err))
		pterm.Fprintln(p.info, "Provider access_token (for manual use):")
		fmt.Fprintln(p.info, e.ProviderToken)
		return
	}

	if e.StatusCode >= 200 && e.StatusCode < 300 {
		pterm.Fprintln(p.info, pterm.Error.Sprint("Backend response (no accessToken in data):"))
	} else {
		pterm.Fprintln(p.info, pterm.Error.Sprintf("Backend returned HTTP %d:", e.StatusCode))
	}
	body, err := json.MarshalIndent(e.Result, "", "  ")
	if err != nil {
		body = []byte(fmt.Sprintf("%+v", e.Result))
	}
	fmt.Fprintln(p.info, string(body))
}
