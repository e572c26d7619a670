/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built estates that populate the database for demos. Each
	scenario is a family file (the same format the CLI reads) plus the
	owner's name and any extra assets still waiting for review.

AVAILABLE SCENARIOS:

	sole-husband:      Husband alone, fixed 1/2 and the rest undistributed
	son-and-daughter:  Asabah 2:1 split with nothing fixed
	wife-two-sons:     Wife 1/8, sons share the remainder
	mother-only:       Radd gives the mother the whole estate
	awl:               Fixed shares above the whole estate, flagged
	extended-family:   Grandparents, grandchildren and a pending asset

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Parse the family file via the factory
 3. Create owner and family members
 4. Register the estate as an approved asset and calculate it
 5. Register any extra assets as pending

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "wife-two-sons"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler
  - factory/family.go: Family file format
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amanah/faraid-engine/estate"
	"github.com/amanah/faraid-engine/factory"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	OwnerName string
	Family    string // family file, YAML
	Pending   []pendingAsset
}

type pendingAsset struct {
	Name  string
	Kind  string
	Value int64
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "sole-husband",
			Name:        "Sole Husband",
			Description: "Husband with no descendants takes 1/2; nobody is left for the rest",
			Category:    "fixed",
		},
		OwnerName: "Khadijah binti Omar",
		Family: `
owner_gender: female
estate_value: 100000
heirs:
  - {id: h1, full_name: Hamzah bin Yusof, relationship: husband}
`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "son-and-daughter",
			Name:        "Son and Daughter",
			Description: "No fixed shares; the son takes twice the daughter's share",
			Category:    "asabah",
		},
		OwnerName: "Ismail bin Ahmad",
		Family: `
owner_gender: male
estate_value: 90000
heirs:
  - {id: s1, full_name: Amir bin Ismail, relationship: son}
  - {id: d1, full_name: Nurul binti Ismail, relationship: daughter}
`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "wife-two-sons",
			Name:        "Wife and Two Sons",
			Description: "Wife takes 1/8 with descendants; the sons share 7/8",
			Category:    "asabah",
		},
		OwnerName: "Rahman bin Salleh",
		Family: `
owner_gender: male
estate_value: 160000
heirs:
  - {id: w1, full_name: Zainab binti Ali, relationship: wife}
  - {id: s1, full_name: Faiz bin Rahman, relationship: son}
  - {id: s2, full_name: Hakim bin Rahman, relationship: son}
`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "mother-only",
			Name:        "Mother Only",
			Description: "Mother takes 1/3 and the remainder returns to her by Radd",
			Category:    "radd",
		},
		OwnerName: "Daud bin Hashim",
		Family: `
owner_gender: male
estate_value: 60000
heirs:
  - {id: m1, full_name: Aminah binti Razak, relationship: mother}
  - {id: x1, full_name: Kamal bin Idris, relationship: cousin}
`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "awl",
			Name:        "Oversubscribed Estate",
			Description: "Husband 1/2, two sisters 2/3 and mother 1/6 exceed the estate",
			Category:    "awl",
		},
		OwnerName: "Maryam binti Yaakob",
		Family: `
owner_gender: female
estate_value: 120000
heirs:
  - {id: h1, full_name: Osman bin Musa, relationship: husband}
  - {id: a1, full_name: Safiyyah binti Yaakob, relationship: full sister}
  - {id: a2, full_name: Ruqayyah binti Yaakob, relationship: full sister}
  - {id: m1, full_name: Halimah binti Said, relationship: mother}
`,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "extended-family",
			Name:        "Extended Family",
			Description: "Wife, daughter, granddaughters and a maternal grandmother; one asset pending review",
			Category:    "mixed",
		},
		OwnerName: "Abdullah bin Hassan",
		Family: `
owner_gender: male
estate_value: 480000
heirs:
  - {id: w1, full_name: Salmah binti Karim, relationship: wife}
  - {id: d1, full_name: Aisyah binti Abdullah, relationship: daughter}
  - {id: g1, full_name: Sofia binti Hakim, relationship: granddaughter}
  - {id: g2, full_name: Lina binti Hakim, relationship: granddaughter}
  - {id: gm, full_name: Fatimah binti Yusuf, relationship: maternal_grandmother}
  - {id: h9, full_name: Unknown Claimant, relationship: husband}
`,
		Pending: []pendingAsset{
			{Name: "Shophouse in Kota Bharu", Kind: "property", Value: 350000},
		},
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if s, ok := findScenario(current); ok {
		writeJSON(w, http.StatusOK, s.ScenarioDTO)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}

	ownerID, err := h.loadScenario(r.Context(), s)
	if err != nil {
		h.fail(w, r, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"scenario": s.ID,
		"owner_id": ownerID,
	})
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// loadScenario replaces the database contents with s and returns the
// owner's ID.
func (h *Handler) loadScenario(ctx context.Context, s scenario) (string, error) {
	family, err := h.Families.Parse([]byte(s.Family), factory.FormatYAML)
	if err != nil {
		return "", fmt.Errorf("scenario %s: %w", s.ID, err)
	}

	if err := h.Store.Reset(ctx); err != nil {
		return "", err
	}

	now := h.Now().UTC()
	owner := estate.Owner{
		ID:        "owner-" + s.ID,
		FullName:  s.OwnerName,
		Gender:    family.OwnerGender,
		CreatedAt: now,
	}
	if err := h.Store.SaveOwner(ctx, owner); err != nil {
		return "", err
	}

	for _, heir := range family.Heirs {
		member := estate.FamilyMember{
			ID:           heir.ID,
			OwnerID:      owner.ID,
			FullName:     heir.FullName,
			Relationship: heir.Relationship,
			IC:           heir.IC,
			CreatedAt:    now,
		}
		if err := h.Store.SaveFamilyMember(ctx, member); err != nil {
			return "", err
		}
	}

	estateAsset := estate.Asset{
		ID:        "asset-" + s.ID,
		OwnerID:   owner.ID,
		Name:      "Estate of " + s.OwnerName,
		Kind:      "estate",
		Value:     family.EstateValue,
		Status:    estate.AssetPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := estateAsset.Review(true, "scenario", "demo data", now); err != nil {
		return "", err
	}
	if err := h.Store.SaveAsset(ctx, estateAsset); err != nil {
		return "", err
	}
	if _, err := estate.Recalculate(ctx, h.Store, estateAsset.ID, now); err != nil {
		return "", err
	}

	for i, p := range s.Pending {
		asset := estate.Asset{
			ID:        fmt.Sprintf("asset-%s-%d", s.ID, i+1),
			OwnerID:   owner.ID,
			Name:      p.Name,
			Kind:      p.Kind,
			Value:     decimal.NewFromInt(p.Value),
			Status:    estate.AssetPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := h.Store.SaveAsset(ctx, asset); err != nil {
			return "", err
		}
	}

	h.mu.Lock()
	h.currentScenario = s.ID
	h.mu.Unlock()

	h.Logger.Info("scenario loaded", zap.String("scenario", s.ID), zap.Int("heirs", len(family.Heirs)))
	return owner.ID, nil
}
