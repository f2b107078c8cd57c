package attribution

import (
	"context"

	"go.uber.org/zap"

	"ifta-mileage/internal/lib/geo"
	"ifta-mileage/internal/lib/states"
)

// EndpointSplit is the terminal attribution tier: it looks only at the two
// leg endpoints. Same state gets everything, different states split 50/50,
// one unknown endpoint cedes to the known one, and two unknown endpoints
// put the whole leg in the UNKNOWN bucket so mileage is never dropped.
type EndpointSplit struct {
	resolver ReverseGeocoder
	log      *zap.Logger
}

// NewEndpointSplit builds the fallback strategy. The resolver is optional;
// without one, only the waypoint state hints are consulted.
func NewEndpointSplit(resolver ReverseGeocoder, log *zap.Logger) *EndpointSplit {
	if log == nil {
		log = zap.NewNop()
	}
	return &EndpointSplit{resolver: resolver, log: log}
}

func (f *EndpointSplit) Method() string { return MethodFallbackSplit }

// Attribute is deterministic for identical inputs and never returns an
// empty, error-free result for a leg with positive distance.
func (f *EndpointSplit) Attribute(ctx context.Context, in Input) ([]StateShare, error) {
	if in.TotalMiles < 0 {
		return nil, nil
	}

	originState := f.endpointState(ctx, in.OriginState, in.Origin)
	destState := f.endpointState(ctx, in.DestinationState, in.Destination)

	switch {
	case originState == "" && destState == "":
		return []StateShare{{StateCode: states.Unknown, Miles: in.TotalMiles}}, nil
	case originState == destState:
		return []StateShare{{StateCode: originState, Miles: in.TotalMiles}}, nil
	case originState == "":
		return []StateShare{{StateCode: destState, Miles: in.TotalMiles}}, nil
	case destState == "":
		return []StateShare{{StateCode: originState, Miles: in.TotalMiles}}, nil
	}

	half := in.TotalMiles / 2
	return sharesFromMap(map[string]float64{
		originState: half,
		destState:   half,
	}), nil
}

func (f *EndpointSplit) endpointState(ctx context.Context, hint string, p geo.Point) string {
	if code, ok := states.Normalize(hint); ok {
		return code
	}
	if f.resolver == nil || !p.Valid() {
		return ""
	}
	raw, err := f.resolver.StateOf(ctx, p)
	if err != nil {
		f.log.Debug("endpoint state resolution failed", zap.Error(err))
		return ""
	}
	if code, ok := states.Normalize(raw); ok {
		return code
	}
	return ""
}
