package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/sightline/internal/model"
	"github.com/agenthands/sightline/internal/ports"
)

// ConservativeSummary is emitted when no grounded claim survives
// evidence re-validation.
const ConservativeSummary = "Insufficient verified evidence to answer confidently. " +
	"Returning conservative output with uncertainty."

// TemplateSynthesizer renders grounded claims into a numbered summary with
// an evidence appendix. It re-validates evidence independently: claims with
// no evidence refs are redacted, never emitted.
type TemplateSynthesizer struct{}

func NewTemplateSynthesizer() *TemplateSynthesizer {
	return &TemplateSynthesizer{}
}

func (s *TemplateSynthesizer) Synthesize(_ context.Context, _ string, claims []model.ClaimRecord) (model.SynthesisOutput, error) {
	var grounded []model.ClaimRecord
	redacted := 0
	for _, claim := range claims {
		if len(claim.EvidenceRefs) == 0 {
			redacted++
			continue
		}
		grounded = append(grounded, claim)
	}

	if len(grounded) == 0 {
		return model.SynthesisOutput{
			Summary:            ConservativeSummary,
			RedactedClaimCount: redacted,
		}, nil
	}

	lines := make([]string, 0, len(grounded))
	appendix := make([]string, 0, len(grounded))
	for idx, claim := range grounded {
		lines = append(lines, fmt.Sprintf("%d. %s", idx+1, claim.Text))
		appendix = append(appendix, fmt.Sprintf(
			"claim=%s camera=%s t=(%d,%d) evidence=%d",
			claim.ClaimID, claim.CameraID, claim.TStart, claim.TEnd, len(claim.EvidenceRefs),
		))
	}

	return model.SynthesisOutput{
		Summary:            strings.Join(lines, " "),
		Claims:             grounded,
		EvidenceAppendix:   appendix,
		RedactedClaimCount: redacted,
	}, nil
}

var _ ports.Synthesizer = (*TemplateSynthesizer)(nil)
