package scan

import (
	"context"
	"fmt"
	"math"
)

// Mode selects how the pipeline interprets its input.
type Mode int

const (
	// ModeBarcode decodes the input as a raw barcode string.
	ModeBarcode Mode = iota
	// ModeManualLookup treats the input as a product name and skips
	// decoding; promoter, article and price resolution run unchanged.
	ModeManualLookup
)

// Stage names the pipeline step a failure occurred in.
type Stage string

const (
	StageDecode   Stage = "decode"
	StagePromoter Stage = "promoter"
	StageArticle  Stage = "article"
)

// Error kinds. These are the only failures the pipeline produces; a missing
// price, weight or GST is reported as absent fields on a successful Result.
const (
	KindUndecodable        = "undecodable"
	KindPromoterUnresolved = "promoter_unresolved"
	KindArticleUnresolved  = "article_unresolved"
)

// PipelineError reports which stage failed and the inputs that drove it, so
// the caller can render a precise message.
type PipelineError struct {
	Stage          Stage
	Kind           string
	Input          string
	StoreName      string
	Format         Format
	ArticleCode    int64
	TriedPromoters []string
}

func (e *PipelineError) Error() string {
	switch e.Kind {
	case KindUndecodable:
		return fmt.Sprintf("unable to decode barcode %q", e.Input)
	case KindPromoterUnresolved:
		return fmt.Sprintf("unable to determine promoter: store %q not found and barcode format %q is unknown", e.StoreName, e.Format)
	case KindArticleUnresolved:
		return fmt.Sprintf("article code %d not found for promoters %v", e.ArticleCode, e.TriedPromoters)
	}
	return fmt.Sprintf("scan failed at stage %s", e.Stage)
}

// Result is the pipeline's output. Every field except the price- and
// weight-related ones is populated on success; Price, GST, PriceWithGST and
// WeightKg may be absent without that being a failure.
type Result struct {
	Product      string   `json:"product"`
	ArticleCode  int64    `json:"article_code"`
	StoreName    string   `json:"store_name"`
	Format       Format   `json:"store_type"`
	Promoter     string   `json:"promoter"`
	Pricelist    string   `json:"pricelist"`
	Price        *float64 `json:"price"`
	GST          *float64 `json:"gst"`
	PriceWithGST *float64 `json:"price_with_gst"`
	WeightKg     *float64 `json:"weight"`
	WeightCode   string   `json:"weight_code"`
	FormatLabel  string   `json:"barcode_format"`
}

// Pipeline turns a raw scanned barcode (or a product name, in manual mode)
// into a resolved product, promoter and tax-inclusive price. It holds no
// mutable state; any number of Scan calls may run concurrently.
type Pipeline struct {
	dir Directory
}

func New(dir Directory) *Pipeline {
	return &Pipeline{dir: dir}
}

// Scan runs decode -> promoter -> article -> price and assembles the result.
// storeName is optional; when present it drives promoter resolution and the
// article fallback retry. The price stage never fails.
func (p *Pipeline) Scan(ctx context.Context, input, storeName string, mode Mode) (*Result, error) {
	if mode == ModeManualLookup {
		return p.lookup(ctx, input, storeName)
	}

	decoded, ok := Decode(input)
	if !ok {
		return nil, &PipelineError{Stage: StageDecode, Kind: KindUndecodable, Input: input, StoreName: storeName}
	}

	promoter, err := p.resolvePromoter(ctx, storeName, decoded.Format)
	if err != nil {
		return nil, err
	}
	if promoter == "" {
		return nil, &PipelineError{Stage: StagePromoter, Kind: KindPromoterUnresolved, Input: input, StoreName: storeName, Format: decoded.Format}
	}

	article, matched, tried, err := p.resolveArticle(ctx, decoded.ArticleCode, promoter, storeName, decoded.Format)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, &PipelineError{Stage: StageArticle, Kind: KindArticleUnresolved, Input: input, StoreName: storeName, Format: decoded.Format, ArticleCode: decoded.ArticleCode, TriedPromoters: tried}
	}
	promoter = matched

	outcome, err := p.resolvePrice(ctx, article.Product, promoter, storeName)
	if err != nil {
		return nil, err
	}

	return &Result{
		Product:      article.Product,
		ArticleCode:  decoded.ArticleCode,
		StoreName:    storeName,
		Format:       decoded.Format,
		Promoter:     promoter,
		Pricelist:    outcome.Pricelist,
		Price:        outcome.Price,
		GST:          outcome.GST,
		PriceWithGST: outcome.PriceWithGST,
		WeightKg:     decoded.WeightKg,
		WeightCode:   WeightCode(decoded.WeightKg),
		FormatLabel:  decoded.Format.Label(),
	}, nil
}

// lookup resolves an article by product name instead of by barcode. The
// promoter must come from the store directory; there is no format to fall
// back on.
func (p *Pipeline) lookup(ctx context.Context, articleName, storeName string) (*Result, error) {
	promoter, err := p.resolvePromoter(ctx, storeName, FormatManualLookup)
	if err != nil {
		return nil, err
	}
	if promoter == "" {
		return nil, &PipelineError{Stage: StagePromoter, Kind: KindPromoterUnresolved, Input: articleName, StoreName: storeName, Format: FormatManualLookup}
	}

	tried := []string{promoter}
	article, err := p.dir.ArticleByName(ctx, articleName, promoter)
	if err != nil {
		return nil, err
	}
	if article == nil {
		article, err = p.dir.ArticleByName(ctx, articleName, "")
		if err != nil {
			return nil, err
		}
		if article != nil && article.Promoter != promoter {
			tried = append(tried, article.Promoter)
			promoter = article.Promoter
		}
	}
	if article == nil {
		return nil, &PipelineError{Stage: StageArticle, Kind: KindArticleUnresolved, Input: articleName, StoreName: storeName, Format: FormatManualLookup, TriedPromoters: tried}
	}

	outcome, err := p.resolvePrice(ctx, article.Product, promoter, storeName)
	if err != nil {
		return nil, err
	}

	return &Result{
		Product:      article.Product,
		ArticleCode:  article.ArticleCode,
		StoreName:    storeName,
		Format:       FormatManualLookup,
		Promoter:     promoter,
		Pricelist:    outcome.Pricelist,
		Price:        outcome.Price,
		GST:          outcome.GST,
		PriceWithGST: outcome.PriceWithGST,
		WeightCode:   WeightCode(nil),
		FormatLabel:  FormatManualLookup.Label(),
	}, nil
}

// WeightCode renders a weight as the fixed 5-digit gram string scan sheets
// carry, "00000" when no weight was decoded.
func WeightCode(weightKg *float64) string {
	if weightKg == nil {
		return "00000"
	}
	return fmt.Sprintf("%05d", int64(math.Round(*weightKg*1000)))
}
