package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/khanhnv2901/talos-cli/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/talos-cli/internal/shared/errors"
)

// AnalysisReport is the aggregated result the analysis engine returns for a
// single URL. It is immutable once decoded: consumers receive pointers and
// must not modify it.
type AnalysisReport struct {
	URL     string   `json:"url,omitempty"`
	Final   Final    `json:"final"`
	SSL     *SSL     `json:"ssl,omitempty"`
	Infra   Infra    `json:"infra"`
	Sandbox *Sandbox `json:"sandbox,omitempty"`

	// raw holds the exact bytes received so fields we do not model survive export.
	raw json.RawMessage
}

// Final carries the consolidated risk assessment.
type Final struct {
	Score   float64  `json:"score"`
	Verdict string   `json:"verdict"`
	Reasons []string `json:"reasons"`
}

// SSL describes the certificate probe result.
type SSL struct {
	Valid  bool   `json:"valid"`
	Issuer string `json:"issuer,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Infra groups the DNS, geolocation and WHOIS sub-reports. Each may be absent.
type Infra struct {
	DNS   *DNS   `json:"dns,omitempty"`
	Geo   *Geo   `json:"geo,omitempty"`
	Whois *Whois `json:"whois,omitempty"`
}

type DNS struct {
	A []string `json:"a,omitempty"`
}

type Geo struct {
	CountryCode string `json:"countryCode,omitempty"`
}

type Whois struct {
	Org          string `json:"org,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
}

// Sandbox is the remote browser capture. Screenshot is an image URL or data URI.
type Sandbox struct {
	Status     string `json:"status,omitempty"`
	Screenshot string `json:"screenshot,omitempty"`
	Error      string `json:"error,omitempty"`
}

// wireReport mirrors AnalysisReport with pointers where presence must be checked.
type wireReport struct {
	URL     string     `json:"url"`
	Final   *wireFinal `json:"final"`
	SSL     *SSL       `json:"ssl"`
	Infra   *Infra     `json:"infra"`
	Sandbox *Sandbox   `json:"sandbox"`
}

type wireFinal struct {
	Score   *float64 `json:"score"`
	Verdict string   `json:"verdict"`
	Reasons []string `json:"reasons"`
}

// Decode parses an engine response body. Any schema mismatch is reported as a
// *errors.MalformedReportError.
func Decode(data []byte) (*AnalysisReport, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, malformed(errors.New("empty body"))
	}

	var wire wireReport
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, malformed(err)
	}
	if wire.Final == nil {
		return nil, malformed(errors.New("missing final section"))
	}
	if wire.Final.Score == nil {
		return nil, malformed(errors.New("missing final.score"))
	}
	score := *wire.Final.Score
	if score < 0 || score > constants.MaxScore {
		return nil, malformed(fmt.Errorf("final.score %s outside [0,%s]", FormatScore(score), FormatScore(constants.MaxScore)))
	}

	r := &AnalysisReport{
		URL: wire.URL,
		Final: Final{
			Score:   score,
			Verdict: wire.Final.Verdict,
			Reasons: wire.Final.Reasons,
		},
		SSL:     wire.SSL,
		Sandbox: wire.Sandbox,
		raw:     append(json.RawMessage(nil), trimmed...),
	}
	if wire.Infra != nil {
		r.Infra = *wire.Infra
	}
	return r, nil
}

func malformed(err error) error {
	return &sharedErrors.MalformedReportError{Err: err}
}

// MarshalJSON returns the bytes originally received when the report was
// decoded, so an export sends the engine's full payload back.
func (r AnalysisReport) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	type plain AnalysisReport
	return json.Marshal(plain(r))
}

// IsThreat reports whether the score crosses the fixed threat threshold.
func (f Final) IsThreat() bool {
	return IsThreatScore(f.Score)
}

// IsThreatScore applies the verdict threshold: strictly above 50 is a threat.
func IsThreatScore(score float64) bool {
	return score > constants.ThreatThreshold
}

// FormatScore renders a score without trailing zeros (75 -> "75", 62.5 -> "62.5").
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// PrimaryIP returns the first A record, if any.
func (i Infra) PrimaryIP() (string, bool) {
	if i.DNS == nil || len(i.DNS.A) == 0 || i.DNS.A[0] == "" {
		return "", false
	}
	return i.DNS.A[0], true
}

// CountryCode returns the geolocated country, if any.
func (i Infra) CountryCode() (string, bool) {
	if i.Geo == nil || i.Geo.CountryCode == "" {
		return "", false
	}
	return i.Geo.CountryCode, true
}

// Organization returns the WHOIS organization, if any.
func (i Infra) Organization() (string, bool) {
	if i.Whois == nil || i.Whois.Org == "" {
		return "", false
	}
	return i.Whois.Org, true
}
