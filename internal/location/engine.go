package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/routevox/trip-planner/pkg/common"
	"github.com/routevox/trip-planner/pkg/geo"
	"github.com/routevox/trip-planner/pkg/logger"
	"go.uber.org/zap"
)

const (
	// disagreementThresholdKm is the distance above which two sources are
	// considered to name different physical locations.
	disagreementThresholdKm = 1.0

	// distanceGuardKm flags results suspiciously far from the search bias
	// when the user gave no explicit geographic context.
	distanceGuardKm = 50.0
)

// Per-source confidence assigned to accepted results.
const (
	confidenceValidation = 0.95
	confidencePlaces     = 0.9
	confidenceGeocoding  = 0.8
)

// Engine reconciles provider lookups into one trusted coordinate per
// descriptor, or a ConfirmationRequiredError when the sources disagree.
type Engine struct {
	places    PlacesSearcher
	validator AddressValidator
	geocoder  Geocoder
}

func NewEngine(places PlacesSearcher, validator AddressValidator, geocoder Geocoder) *Engine {
	return &Engine{
		places:    places,
		validator: validator,
		geocoder:  geocoder,
	}
}

// Resolve resolves a single descriptor. bias anchors the search and the
// distance guard; it may be nil. Resolution is deterministic for a fixed
// set of provider answers.
func (e *Engine) Resolve(ctx context.Context, d *Descriptor, bias *geo.Point) (*Resolved, error) {
	if d.IsResolved() {
		return &Resolved{
			Latitude:    *d.Latitude,
			Longitude:   *d.Longitude,
			DisplayName: d.DisplayLabel(),
			Source:      SourceClient,
			Confidence:  1,
		}, nil
	}

	query := BuildSearchQuery(d)
	strategy := SelectStrategy(d)

	logger.DebugContext(ctx, "resolving location",
		zap.String("query", query),
		zap.String("strategy", string(strategy)))

	switch strategy {
	case StrategyPlacesPrimary:
		return e.resolvePlacesPrimary(ctx, d, query, bias)
	case StrategyAddressValidation:
		return e.resolveAddressValidation(ctx, d, query, bias)
	case StrategyGeocodingOnly:
		return e.resolveGeocodingOnly(ctx, d, query, bias)
	default:
		return e.resolveHybrid(ctx, d, query, bias)
	}
}

// resolvePlacesPrimary trusts the places result when the cross-check agrees
// or is unavailable, and falls back to geocoding when places finds nothing.
func (e *Engine) resolvePlacesPrimary(ctx context.Context, d *Descriptor, query string, bias *geo.Point) (*Resolved, error) {
	var (
		placesRes *SourceResult
		placesErr error
		geoRes    []SourceResult
		geoErr    error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		placesRes, placesErr = e.places.TextSearch(ctx, query, bias)
	}()
	go func() {
		defer wg.Done()
		geoRes, geoErr = e.geocoder.Geocode(ctx, query, bias)
	}()
	wg.Wait()

	placesOK := placesErr == nil && placesRes != nil
	geoOK := geoErr == nil && len(geoRes) > 0

	if !placesOK && !geoOK {
		return nil, e.allSourcesFailed(ctx, query, placesErr, geoErr)
	}

	if placesOK && geoOK {
		dist := geo.Haversine(placesRes.Latitude, placesRes.Longitude, geoRes[0].Latitude, geoRes[0].Longitude)
		if dist > disagreementThresholdKm {
			return nil, e.needsConfirmation(ctx, d,
				fmt.Sprintf("Places and Geocoding differ by %.2fkm", dist),
				e.collectAlternatives(d, bias, placesRes, nil, geoRes))
		}
	}

	if placesOK {
		if warn := e.distanceWarning(d, bias, placesRes.Latitude, placesRes.Longitude); warn > 0 {
			return nil, e.needsConfirmation(ctx, d,
				fmt.Sprintf("matched place is %.0f km from the expected area", warn),
				e.collectAlternatives(d, bias, placesRes, nil, geoRes))
		}
		return e.accept(ctx, d, *placesRes, SourcePlaces, confidencePlaces), nil
	}

	// places found nothing; geocoding alone must be unambiguous
	if spread, multiple := candidateSpread(geoRes); multiple {
		return nil, e.needsConfirmation(ctx, d,
			fmt.Sprintf("geocoding returned %d candidates up to %.1f km apart", len(geoRes), spread),
			e.collectAlternatives(d, bias, nil, nil, geoRes))
	}
	if warn := e.distanceWarning(d, bias, geoRes[0].Latitude, geoRes[0].Longitude); warn > 0 {
		return nil, e.needsConfirmation(ctx, d,
			fmt.Sprintf("geocoded result is %.0f km from the expected area", warn),
			e.collectAlternatives(d, bias, nil, nil, geoRes))
	}
	return e.accept(ctx, d, geoRes[0], SourceGeocoding, confidenceGeocoding), nil
}

// resolveAddressValidation cross-checks the validator's verdict against
// geocoding. Any incompleteness, unconfirmed component or disagreement asks
// the user to confirm.
func (e *Engine) resolveAddressValidation(ctx context.Context, d *Descriptor, query string, bias *geo.Point) (*Resolved, error) {
	regionCode := ""
	if d.Components != nil {
		regionCode = d.Components.Country
	}

	var (
		valRes *ValidationResult
		valErr error
		geoRes []SourceResult
		geoErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		valRes, valErr = e.validator.ValidateAddress(ctx, query, regionCode)
	}()
	go func() {
		defer wg.Done()
		geoRes, geoErr = e.geocoder.Geocode(ctx, query, bias)
	}()
	wg.Wait()

	valOK := valErr == nil && valRes != nil && valRes.Found
	geoOK := geoErr == nil && len(geoRes) > 0

	if !valOK && !geoOK {
		return nil, e.allSourcesFailed(ctx, query, valErr, geoErr)
	}

	var reasons []string

	agree := false
	if valOK && geoOK {
		dist := geo.Haversine(valRes.Latitude, valRes.Longitude, geoRes[0].Latitude, geoRes[0].Longitude)
		agree = dist <= disagreementThresholdKm
		if !agree {
			reasons = append(reasons, fmt.Sprintf("Validation and Geocoding differ by %.2fkm", dist))
		}
	}

	if valOK {
		if !valRes.AddressComplete {
			reasons = append(reasons, "the address appears to be incomplete")
		}
		if len(valRes.UnconfirmedComponents) > 0 {
			reasons = append(reasons, fmt.Sprintf("could not confirm address parts: %s", strings.Join(valRes.UnconfirmedComponents, ", ")))
		}
	}

	// Two agreeing sources outweigh a multiplicity flag from one of them.
	if geoOK && !agree {
		if spread, multiple := candidateSpread(geoRes); multiple {
			reasons = append(reasons, fmt.Sprintf("geocoding returned %d candidates up to %.1f km apart", len(geoRes), spread))
		}
	}

	preferred := SourceResult{}
	source := ""
	confidence := 0.0
	if valOK {
		preferred, source, confidence = valRes.SourceResult, SourceAddressValidation, confidenceValidation
	} else {
		preferred, source, confidence = geoRes[0], SourceGeocoding, confidenceGeocoding
	}

	if valOK {
		if warn := e.distanceWarning(d, bias, valRes.Latitude, valRes.Longitude); warn > 0 {
			reasons = append(reasons, fmt.Sprintf("the validated address is %.0f km from the expected area", warn))
		}
	}
	if geoOK {
		if warn := e.distanceWarning(d, bias, geoRes[0].Latitude, geoRes[0].Longitude); warn > 0 {
			reasons = append(reasons, fmt.Sprintf("the geocoded result is %.0f km from the expected area", warn))
		}
	}

	if len(reasons) > 0 {
		var valSrc *SourceResult
		if valOK {
			valSrc = &valRes.SourceResult
		}
		return nil, e.needsConfirmation(ctx, d, strings.Join(reasons, "; "),
			e.collectAlternatives(d, bias, nil, valSrc, geoRes))
	}

	resolved := e.accept(ctx, d, preferred, source, confidence)
	if valOK {
		resolved.UnconfirmedComponents = valRes.UnconfirmedComponents
	}
	return resolved, nil
}

// resolveGeocodingOnly trusts the top geocode only when it mentions every
// word of the original phrase.
func (e *Engine) resolveGeocodingOnly(ctx context.Context, d *Descriptor, query string, bias *geo.Point) (*Resolved, error) {
	geoRes, err := e.geocoder.Geocode(ctx, query, bias)
	if err != nil {
		return nil, e.allSourcesFailed(ctx, query, err)
	}
	if len(geoRes) == 0 {
		return nil, e.allSourcesFailed(ctx, query, ErrNoResults)
	}

	top := geoRes[0]
	if cmp := CompareText(d.Original, top.FormattedAddress); len(cmp.MissingTokens) > 0 {
		return nil, e.needsConfirmation(ctx, d,
			fmt.Sprintf("the geocoded address does not mention: %s", strings.Join(cmp.MissingTokens, ", ")),
			e.collectAlternatives(d, bias, nil, nil, geoRes))
	}
	if warn := e.distanceWarning(d, bias, top.Latitude, top.Longitude); warn > 0 {
		return nil, e.needsConfirmation(ctx, d,
			fmt.Sprintf("geocoded result is %.0f km from the expected area", warn),
			e.collectAlternatives(d, bias, nil, nil, geoRes))
	}

	return e.accept(ctx, d, top, SourceGeocoding, confidenceGeocoding), nil
}

// resolveHybrid fans out to places and geocoding with neither trusted
// outright.
func (e *Engine) resolveHybrid(ctx context.Context, d *Descriptor, query string, bias *geo.Point) (*Resolved, error) {
	var (
		placesRes *SourceResult
		placesErr error
		geoRes    []SourceResult
		geoErr    error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		placesRes, placesErr = e.places.TextSearch(ctx, query, bias)
	}()
	go func() {
		defer wg.Done()
		geoRes, geoErr = e.geocoder.Geocode(ctx, query, bias)
	}()
	wg.Wait()

	placesOK := placesErr == nil && placesRes != nil
	geoOK := geoErr == nil && len(geoRes) > 0

	if !placesOK && !geoOK {
		return nil, e.allSourcesFailed(ctx, query, placesErr, geoErr)
	}

	var reasons []string

	agree := false
	if placesOK && geoOK {
		dist := geo.Haversine(placesRes.Latitude, placesRes.Longitude, geoRes[0].Latitude, geoRes[0].Longitude)
		agree = dist <= disagreementThresholdKm
		if !agree {
			reasons = append(reasons, fmt.Sprintf("Places and Geocoding differ by %.2fkm", dist))
		}
	}

	if geoOK && !agree {
		if spread, multiple := candidateSpread(geoRes); multiple {
			reasons = append(reasons, fmt.Sprintf("geocoding returned %d candidates up to %.1f km apart", len(geoRes), spread))
		}
	}

	preferred := SourceResult{}
	source := ""
	confidence := 0.0
	if placesOK {
		preferred, source, confidence = *placesRes, SourcePlaces, confidencePlaces
	} else {
		preferred, source, confidence = geoRes[0], SourceGeocoding, confidenceGeocoding
	}

	if placesOK {
		if warn := e.distanceWarning(d, bias, placesRes.Latitude, placesRes.Longitude); warn > 0 {
			reasons = append(reasons, fmt.Sprintf("the matched place is %.0f km from the expected area", warn))
		}
	}
	if geoOK {
		if warn := e.distanceWarning(d, bias, geoRes[0].Latitude, geoRes[0].Longitude); warn > 0 {
			reasons = append(reasons, fmt.Sprintf("the geocoded result is %.0f km from the expected area", warn))
		}
	}

	if len(reasons) > 0 {
		return nil, e.needsConfirmation(ctx, d, strings.Join(reasons, "; "),
			e.collectAlternatives(d, bias, placesRes, nil, geoRes))
	}

	return e.accept(ctx, d, preferred, source, confidence), nil
}

// accept builds the final Resolved and attaches a similarity note when the
// accepted text shares few words with the original phrase. The note never
// blocks acceptance.
func (e *Engine) accept(ctx context.Context, d *Descriptor, src SourceResult, source string, confidence float64) *Resolved {
	resolved := &Resolved{
		Latitude:         src.Latitude,
		Longitude:        src.Longitude,
		FormattedAddress: src.FormattedAddress,
		PlaceID:          src.PlaceID,
		DisplayName:      src.DisplayName,
		Source:           source,
		Confidence:       confidence,
	}
	if resolved.DisplayName == "" {
		resolved.DisplayName = d.DisplayLabel()
	}

	candidateText := src.FormattedAddress
	if src.DisplayName != "" {
		candidateText = src.DisplayName + " " + candidateText
	}
	if cmp := CompareText(d.Original, candidateText); cmp.Mismatch {
		resolved.SimilarityNote = fmt.Sprintf("result shares few words with %q", d.Original)
		logger.WarnContext(ctx, "accepted location differs textually from request",
			zap.String("original", d.Original),
			zap.String("accepted", candidateText),
			zap.Float64("match_ratio", cmp.MatchRatio))
	}

	return resolved
}

// needsConfirmation logs and builds the recoverable ambiguity error. The
// caller assembling a batch fills in the stop index and display stops.
func (e *Engine) needsConfirmation(ctx context.Context, d *Descriptor, reason string, alts []Alternative) error {
	logger.InfoContext(ctx, "location needs user confirmation",
		zap.String("original", d.Original),
		zap.String("reason", reason),
		zap.Int("alternatives", len(alts)))
	return &ConfirmationRequiredError{
		Reason:       reason,
		Alternatives: alts,
	}
}

// allSourcesFailed distinguishes provider outage from a clean miss. A hard
// error from any source surfaces as an upstream failure; otherwise nothing
// matched the query.
func (e *Engine) allSourcesFailed(ctx context.Context, query string, errs ...error) error {
	hard := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil && !errors.Is(err, ErrNoResults) {
			hard = append(hard, err)
		}
	}
	if len(hard) > 0 {
		logger.ErrorContext(ctx, "all location sources failed",
			zap.String("query", query),
			zap.Error(errors.Join(hard...)))
		return common.NewUpstreamError("location providers are unavailable", errors.Join(hard...))
	}
	return common.NewNotFoundError(fmt.Sprintf("no results for %q", query), nil)
}

// distanceWarning returns the distance in km when the result is farther
// than the guard allows from the bias point. The guard only applies to
// loosely specified descriptors without explicit region context.
func (e *Engine) distanceWarning(d *Descriptor, bias *geo.Point, lat, lng float64) float64 {
	if bias == nil || d.HasRegionContext() {
		return 0
	}
	switch d.Kind {
	case KindFullAddress, KindLandmark:
		return 0
	}
	dist := geo.Haversine(bias.Lat, bias.Lng, lat, lng)
	if dist > distanceGuardKm {
		return dist
	}
	return 0
}

// candidateSpread reports whether the candidates name physically different
// locations, and how far the farthest sits from the top result.
func candidateSpread(results []SourceResult) (float64, bool) {
	if len(results) < 2 {
		return 0, false
	}
	top := results[0]
	maxDist := 0.0
	for _, r := range results[1:] {
		if d := geo.Haversine(top.Latitude, top.Longitude, r.Latitude, r.Longitude); d > maxDist {
			maxDist = d
		}
	}
	return maxDist, maxDist > disagreementThresholdKm
}

// collectAlternatives gathers every candidate the sources produced,
// stamping each with its distance warning where the guard applies.
func (e *Engine) collectAlternatives(d *Descriptor, bias *geo.Point, places *SourceResult, validated *SourceResult, geocoded []SourceResult) []Alternative {
	alts := make([]Alternative, 0, len(geocoded)+2)
	if places != nil {
		alts = append(alts, Alternative{
			Source:            SourcePlaces,
			Latitude:          places.Latitude,
			Longitude:         places.Longitude,
			FormattedAddress:  places.FormattedAddress,
			DisplayName:       places.DisplayName,
			PlaceID:           places.PlaceID,
			DistanceWarningKm: e.distanceWarning(d, bias, places.Latitude, places.Longitude),
		})
	}
	if validated != nil {
		alts = append(alts, Alternative{
			Source:            SourceAddressValidation,
			Latitude:          validated.Latitude,
			Longitude:         validated.Longitude,
			FormattedAddress:  validated.FormattedAddress,
			PlaceID:           validated.PlaceID,
			DistanceWarningKm: e.distanceWarning(d, bias, validated.Latitude, validated.Longitude),
		})
	}
	for _, r := range geocoded {
		alts = append(alts, Alternative{
			Source:            SourceGeocoding,
			Latitude:          r.Latitude,
			Longitude:         r.Longitude,
			FormattedAddress:  r.FormattedAddress,
			PlaceID:           r.PlaceID,
			DistanceWarningKm: e.distanceWarning(d, bias, r.Latitude, r.Longitude),
		})
	}
	return DedupeAlternatives(alts)
}
