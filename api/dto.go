/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine and the stored records from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

NUMBERS:
  Money, fractions and percentages are exact decimals written as JSON
  numbers. Requests accept either numbers or numeric strings.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - faraid/types.go: Result and Distribution
*/
package api

import (
	"time"

	"github.com/amanah/faraid-engine/estate"
	"github.com/amanah/faraid-engine/faraid"
	"github.com/shopspring/decimal"
)

// Number is a decimal encoded as a bare JSON number.
type Number struct {
	decimal.Decimal
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	return n.Decimal.UnmarshalJSON(b)
}

func num(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

// =============================================================================
// CALCULATION
// =============================================================================

// HeirDTO is an heir as sent by a client.
type HeirDTO struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	Relationship string `json:"relationship"`
	IC           string `json:"ic,omitempty"`
}

func (h HeirDTO) heir() faraid.Heir {
	return faraid.Heir{ID: h.ID, FullName: h.FullName, Relationship: h.Relationship, IC: h.IC}
}

func toHeirDTO(h faraid.Heir) HeirDTO {
	return HeirDTO{ID: h.ID, FullName: h.FullName, Relationship: h.Relationship, IC: h.IC}
}

// CalculateRequest is the body of a stateless calculation.
type CalculateRequest struct {
	OwnerGender string    `json:"owner_gender"`
	EstateValue *Number   `json:"estate_value"`
	Heirs       []HeirDTO `json:"heirs"`
}

// ResultDTO is one heir's allocation.
type ResultDTO struct {
	HeirID       string `json:"heir_id"`
	FullName     string `json:"full_name"`
	Relationship string `json:"relationship"`
	Fraction     Number `json:"fraction"`
	Share        Number `json:"share"`
	Percentage   Number `json:"percentage"`
	Explanation  string `json:"explanation"`
}

// ExclusionDTO is an heir left out of a calculation.
type ExclusionDTO struct {
	HeirDTO
	Reason string `json:"reason"`
}

// CalculationDTO is the response of a stateless calculation.
type CalculationDTO struct {
	EstateValue         Number         `json:"estate_value"`
	Results             []ResultDTO    `json:"results"`
	TotalAllocated      Number         `json:"total_allocated"`
	Remainder           Number         `json:"remainder"`
	Residual            string         `json:"residual"`
	AwlRequired         bool           `json:"awl_required"`
	TotalPercentage     Number         `json:"total_percentage"`
	UncoveredPercentage Number         `json:"uncovered_percentage"`
	Excluded            []ExclusionDTO `json:"excluded"`
}

// ClassifiedDTO is an eligible heir with its parsed role.
type ClassifiedDTO struct {
	HeirDTO
	Role string `json:"role"`
	Side string `json:"side,omitempty"`
}

// ClassifyResponse splits heirs into eligible and excluded.
type ClassifyResponse struct {
	Eligible []ClassifiedDTO `json:"eligible"`
	Excluded []ExclusionDTO  `json:"excluded"`
}

func toResultDTOs(results []faraid.Result) []ResultDTO {
	dtos := make([]ResultDTO, len(results))
	for i, r := range results {
		dtos[i] = ResultDTO{
			HeirID:       r.HeirID,
			FullName:     r.FullName,
			Relationship: r.Relationship.String(),
			Fraction:     num(r.Fraction),
			Share:        num(r.Share),
			Percentage:   num(r.Percentage),
			Explanation:  r.Explanation,
		}
	}
	return dtos
}

func toExclusionDTOs(excluded []faraid.Exclusion) []ExclusionDTO {
	dtos := make([]ExclusionDTO, len(excluded))
	for i, e := range excluded {
		dtos[i] = ExclusionDTO{HeirDTO: toHeirDTO(e.Heir), Reason: string(e.Reason)}
	}
	return dtos
}

// NewCalculationDTO converts an engine Distribution to its wire form.
func NewCalculationDTO(d faraid.Distribution) CalculationDTO {
	return CalculationDTO{
		EstateValue:         num(d.EstateValue),
		Results:             toResultDTOs(d.Results),
		TotalAllocated:      num(d.TotalAllocated),
		Remainder:           num(d.Remainder),
		Residual:            string(d.Residual),
		AwlRequired:         d.AwlRequired,
		TotalPercentage:     num(d.TotalPercentage()),
		UncoveredPercentage: num(d.UncoveredPercentage()),
		Excluded:            toExclusionDTOs(d.Excluded),
	}
}

// NewClassifyResponse converts a classification to its wire form.
func NewClassifyResponse(c faraid.CategorizedHeirs) ClassifyResponse {
	placed := c.Classified()
	resp := ClassifyResponse{
		Eligible: make([]ClassifiedDTO, len(placed)),
		Excluded: toExclusionDTOs(c.Excluded),
	}
	for i, ch := range placed {
		dto := ClassifiedDTO{HeirDTO: toHeirDTO(ch.Heir), Role: ch.Role.String()}
		if ch.Side != faraid.SideUnspecified {
			dto.Side = ch.Side.String()
		}
		resp.Eligible[i] = dto
	}
	return resp
}

// =============================================================================
// OWNERS & FAMILY
// =============================================================================

// OwnerDTO represents an estate owner in API responses.
type OwnerDTO struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Gender    string `json:"gender"`
	CreatedAt string `json:"created_at"`
}

// CreateOwnerRequest is the request body for creating an owner.
type CreateOwnerRequest struct {
	ID       string `json:"id,omitempty"`
	FullName string `json:"full_name"`
	Gender   string `json:"gender"`
}

// FamilyMemberDTO represents a family member. Recognized is false for a
// label the engine will not classify.
type FamilyMemberDTO struct {
	ID           string `json:"id"`
	OwnerID      string `json:"owner_id"`
	FullName     string `json:"full_name"`
	Relationship string `json:"relationship"`
	IC           string `json:"ic,omitempty"`
	Recognized   bool   `json:"recognized"`
	CreatedAt    string `json:"created_at"`
}

// CreateFamilyMemberRequest is the request body for adding a family member.
type CreateFamilyMemberRequest struct {
	ID           string `json:"id,omitempty"`
	FullName     string `json:"full_name"`
	Relationship string `json:"relationship"`
	IC           string `json:"ic,omitempty"`
}

func toOwnerDTO(o estate.Owner) OwnerDTO {
	return OwnerDTO{
		ID:        o.ID,
		FullName:  o.FullName,
		Gender:    o.Gender.String(),
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
}

func toFamilyMemberDTO(m estate.FamilyMember) FamilyMemberDTO {
	_, err := faraid.ParseRelationship(m.Relationship)
	return FamilyMemberDTO{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		FullName:     m.FullName,
		Relationship: m.Relationship,
		IC:           m.IC,
		Recognized:   err == nil,
		CreatedAt:    m.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// ASSETS & DISTRIBUTIONS
// =============================================================================

// AssetDTO represents an asset in API responses.
type AssetDTO struct {
	ID         string  `json:"id"`
	OwnerID    string  `json:"owner_id"`
	Name       string  `json:"name"`
	Kind       string  `json:"kind,omitempty"`
	Value      Number  `json:"value"`
	Status     string  `json:"status"`
	ReviewedBy string  `json:"reviewed_by,omitempty"`
	ReviewNote string  `json:"review_note,omitempty"`
	ReviewedAt *string `json:"reviewed_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// CreateAssetRequest is the request body for registering an asset.
type CreateAssetRequest struct {
	ID    string  `json:"id,omitempty"`
	Name  string  `json:"name"`
	Kind  string  `json:"kind,omitempty"`
	Value *Number `json:"value"`
}

// ReviewRequest is the body of an approve or reject call.
type ReviewRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Note       string `json:"note"`
}

// DistributionDTO is a stored distribution. Stale is set when the family or
// the asset value changed after it was computed.
type DistributionDTO struct {
	ID                  string      `json:"id"`
	AssetID             string      `json:"asset_id"`
	OwnerID             string      `json:"owner_id"`
	EstateValue         Number      `json:"estate_value"`
	Results             []ResultDTO `json:"results"`
	TotalAllocated      Number      `json:"total_allocated"`
	Remainder           Number      `json:"remainder"`
	Residual            string      `json:"residual"`
	AwlRequired         bool        `json:"awl_required"`
	TotalPercentage     Number      `json:"total_percentage"`
	UncoveredPercentage Number      `json:"uncovered_percentage"`
	Fingerprint         string      `json:"fingerprint"`
	Stale               bool        `json:"stale"`
	CreatedAt           string      `json:"created_at"`
}

func toAssetDTO(a estate.Asset) AssetDTO {
	dto := AssetDTO{
		ID:         a.ID,
		OwnerID:    a.OwnerID,
		Name:       a.Name,
		Kind:       a.Kind,
		Value:      num(a.Value),
		Status:     string(a.Status),
		ReviewedBy: a.ReviewedBy,
		ReviewNote: a.ReviewNote,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
	}
	if a.ReviewedAt != nil {
		s := a.ReviewedAt.Format(time.RFC3339)
		dto.ReviewedAt = &s
	}
	return dto
}

func toDistributionDTO(d estate.Distribution, stale bool) DistributionDTO {
	summary := faraid.Distribution{Results: d.Results}
	return DistributionDTO{
		ID:                  d.ID,
		AssetID:             d.AssetID,
		OwnerID:             d.OwnerID,
		EstateValue:         num(d.EstateValue),
		Results:             toResultDTOs(d.Results),
		TotalAllocated:      num(d.TotalAllocated),
		Remainder:           num(d.Remainder),
		Residual:            string(d.Residual),
		AwlRequired:         d.AwlRequired,
		TotalPercentage:     num(summary.TotalPercentage()),
		UncoveredPercentage: num(summary.UncoveredPercentage()),
		Fingerprint:         d.Fingerprint,
		Stale:               stale,
		CreatedAt:           d.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the request body for loading a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is returned for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
