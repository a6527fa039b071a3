package classifier

import (
	"context"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
)

// Fallback consults Primary and, when its answer is degraded, unclear or
// below MinConfidence, answers with Secondary instead.
type Fallback struct {
	Primary       model.Classifier
	Secondary     model.Classifier
	MinConfidence float64
}

func (f Fallback) Classify(ctx context.Context, capabilities []model.Capability, text string) model.Classification {
	p := f.Primary.Classify(ctx, capabilities, text)
	if p.Usable(f.MinConfidence) {
		return p
	}
	logx.Debug().
		Str("source", p.Source).
		Str("intent", string(p.Intent)).
		Float64("confidence", p.Confidence).
		Bool("degraded", p.Degraded).
		Msg("classification not usable, falling back")

	s := f.Secondary.Classify(ctx, capabilities, text)
	s.Notes = append(s.Notes, p.Notes...)
	return s
}

var _ model.Classifier = Fallback{}
