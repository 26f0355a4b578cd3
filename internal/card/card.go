// Package card renders the donor identification card handed to registered
// pledgers. The layout is a plain two-face PDF: a front face with the
// registry identity and a QR code resolving to the public verification URL,
// and a back face with donor and witness details.
package card

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gosimple/slug"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotoconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sightcare/netra/internal/config"
	"github.com/sightcare/netra/internal/observability/metrics"
	pledgedomain "github.com/sightcare/netra/internal/pledge/domain"
)

type Provider interface {
	RenderDonorCard(ctx context.Context, pledge pledgedomain.Pledge) (io.Reader, string, error)
}

type Params struct {
	fx.In

	Config      config.Config
	Institution *config.InstitutionHolder
	Log         *zap.Logger
	Metrics     *metrics.Metrics
}

type Renderer struct {
	cfg         config.Config
	institution *config.InstitutionHolder
	log         *zap.Logger
	metrics     *metrics.Metrics
}

func NewRenderer(p Params) Provider {
	return &Renderer{
		cfg:         p.Config,
		institution: p.Institution,
		log:         p.Log.Named("card.renderer"),
		metrics:     p.Metrics,
	}
}

func (r *Renderer) RenderDonorCard(ctx context.Context, pledge pledgedomain.Pledge) (io.Reader, string, error) {
	inst := r.institution.Current()

	cfg := marotoconfig.NewBuilder().
		WithLeftMargin(10).
		WithRightMargin(10).
		WithTopMargin(10).
		Build()
	m := maroto.New(cfg)

	// Front face.
	m.AddRow(12,
		text.NewCol(12, inst.Name, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	m.AddRow(6,
		text.NewCol(12, "Eye Donation Pledge Card", props.Text{
			Size:  11,
			Align: align.Center,
		}),
	)
	m.AddRow(4, line.NewCol(12))

	m.AddRow(34,
		col.New(8).Add(
			text.New("Reference: "+pledge.ReferenceNumber, props.Text{Style: fontstyle.Bold, Size: 11}),
			text.New("Name: "+pledge.FullName, props.Text{Top: 6, Size: 10}),
			text.New("Organs pledged: "+pledge.OrgansConsented, props.Text{Top: 12, Size: 10}),
			text.New("Pledged on: "+pledge.CreatedAt.UTC().Format("02 Jan 2006"), props.Text{Top: 18, Size: 10}),
		),
		code.NewQrCol(4, r.verificationURL(pledge.ReferenceNumber), props.Rect{
			Center:  true,
			Percent: 90,
		}),
	)

	m.AddRow(8,
		text.NewCol(12, "Scan the code or visit "+inst.Website+" to verify this pledge.", props.Text{
			Size:  8,
			Align: align.Center,
		}),
	)

	// Back face.
	m.AddRow(6, line.NewCol(12))
	m.AddRow(8,
		text.NewCol(12, "Donor Details", props.Text{Style: fontstyle.Bold, Size: 11}),
	)
	m.AddRow(24,
		col.New(6).Add(
			text.New("Mobile: "+pledge.Mobile, props.Text{Size: 9}),
			text.New("Blood group: "+orDash(pledge.BloodGroup), props.Text{Top: 5, Size: 9}),
			text.New("City: "+orDash(pledge.City), props.Text{Top: 10, Size: 9}),
			text.New("State: "+orDash(pledge.State), props.Text{Top: 15, Size: 9}),
		),
		col.New(6).Add(
			text.New("Witness 1: "+orDash(pledge.Witness1Name), props.Text{Size: 9}),
			text.New("Witness 2: "+orDash(pledge.Witness2Name), props.Text{Top: 5, Size: 9}),
			text.New("Eye bank: "+orDash(pledge.PreferredEyeBank), props.Text{Top: 10, Size: 9}),
		),
	)

	m.AddRow(14,
		text.NewCol(12, inst.ConsentText, props.Text{Size: 7}),
	)
	m.AddRow(10,
		text.NewCol(12, inst.Address+" | "+inst.Phone+" | "+inst.Email, props.Text{
			Size:  7,
			Align: align.Center,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("render donor card: %w", err)
	}

	r.metrics.RecordCardRendered(ctx)
	r.log.Info("donor card rendered",
		zap.String("pledge_id", pledge.ID.String()),
		zap.String("reference_number", pledge.ReferenceNumber),
	)

	filename := slug.Make(pledge.ReferenceNumber+"-"+pledge.FullName) + ".pdf"
	return bytes.NewReader(doc.GetBytes()), filename, nil
}

func (r *Renderer) verificationURL(reference string) string {
	base := strings.TrimRight(r.cfg.PublicBaseURL, "/")
	return base + "/verify/" + reference
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
