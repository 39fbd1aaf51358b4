package synth

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/joseph-ayodele/rspl-generator/internal/entity"
)

// Attributes are the identifier-like and physical fields no evidence source provides.
type Attributes struct {
	CageCode            string
	HSCode              string
	CountryOfOrigin     string
	ItemDimensions      string // "L x W x H", cm
	PackagingDimensions string // "L x W x H", cm
	MinSalesQty         int
	StandardPackageQty  int
}

// AttributeGenerator supplies plausible placeholder attributes for a candidate.
type AttributeGenerator interface {
	Generate(c entity.CandidatePart) Attributes
}

// Countries a placeholder country of origin is drawn from.
var Countries = []string{"NL", "DE", "IT", "ES", "SE"}

// RandomAttributes draws attributes from fixed ranges. Safe for concurrent use.
type RandomAttributes struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomAttributes returns a generator seeded from seed, or from the clock when seed is 0.
func NewRandomAttributes(seed uint64) *RandomAttributes {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomAttributes{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *RandomAttributes) Generate(_ entity.CandidatePart) Attributes {
	g.mu.Lock()
	defer g.mu.Unlock()

	between := func(lo, hi int) int { return lo + g.rng.IntN(hi-lo+1) }
	return Attributes{
		CageCode:            fmt.Sprintf("%d", between(10000, 99999)),
		HSCode:              fmt.Sprintf("%d", between(8400, 16399)),
		CountryOfOrigin:     Countries[g.rng.IntN(len(Countries))],
		ItemDimensions:      Dimensions(between(10, 39), between(5, 29), between(3, 22)),
		PackagingDimensions: Dimensions(between(20, 69), between(15, 54), between(10, 39)),
		MinSalesQty:         1,
		StandardPackageQty:  1,
	}
}

// Dimensions formats centimetre dimensions as "L x W x H".
func Dimensions(l, w, h int) string {
	return fmt.Sprintf("%d x %d x %d", l, w, h)
}

// FixedAttributes returns the same attributes for every candidate.
type FixedAttributes Attributes

func (f FixedAttributes) Generate(entity.CandidatePart) Attributes {
	return Attributes(f)
}
