package disease

import (
	"errors"
	"net/http"
	"testing"

	"harvestease-backend/internal/database"
	"harvestease-backend/internal/models"
	"harvestease-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockIdentifier records the call and returns canned matches.
type mockIdentifier struct {
	calls   int
	matches []Match
	err     error
}

func (m *mockIdentifier) Identify(affectedParts, symptoms []string) ([]Match, error) {
	m.calls++
	return m.matches, m.err
}

func newDiseaseApp(ident Identifier) *fiber.App {
	app := testutil.NewApp()
	app.Post("/diseases", CreateDiseaseHandler())
	app.Get("/diseases", ListDiseasesHandler())
	app.Post("/diseases/search", SearchDiseasesHandler(ident))
	app.Get("/diseases/:id", GetDiseaseHandler())
	app.Put("/diseases/:id", UpdateDiseaseHandler())
	app.Delete("/diseases/:id", DeleteDiseaseHandler())
	return app
}

func seedBlast(t *testing.T) {
	t.Helper()
	d := models.DiseaseRecord{
		Name:                 "Rice Blast",
		AffectedParts:        []string{"Leaves", "Panicles"},
		Symptoms:             []string{"Diamond-shaped lesions", "Grey centers"},
		FavorableConditions:  []string{"High humidity"},
		Treatments:           []string{"Tricyclazole spray"},
		NextSeasonManagement: []string{"Resistant varieties"},
	}
	require.NoError(t, database.DB.Create(&d).Error)
}

func TestCreateDiseaseRequiresAllLists(t *testing.T) {
	testutil.SetupDB(t)
	app := newDiseaseApp(&mockIdentifier{})

	var resp DiseaseResponse
	status := testutil.DoJSON(t, app, "POST", "/diseases", fiber.Map{
		"name":                   "Brown Spot",
		"affected_parts":         []string{"Leaves"},
		"symptoms":               []string{"Brown oval spots"},
		"favorable_conditions":   []string{"Nutrient-poor soil"},
		"treatments":             []string{"Mancozeb"},
		"next_season_management": []string{"Balanced fertilization"},
	}, &resp)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Brown Spot", resp.Name)

	// Missing symptom list.
	status = testutil.DoJSON(t, app, "POST", "/diseases", fiber.Map{
		"name":                   "Sheath Blight",
		"affected_parts":         []string{"Sheath"},
		"favorable_conditions":   []string{"Dense planting"},
		"treatments":             []string{"Validamycin"},
		"next_season_management": []string{"Wider spacing"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSearchPrefersLocalKnowledge(t *testing.T) {
	testutil.SetupDB(t)
	ident := &mockIdentifier{matches: []Match{{Name: "External Guess", Source: "external"}}}
	app := newDiseaseApp(ident)
	seedBlast(t)

	var resp SearchResponse
	status := testutil.DoJSON(t, app, "POST", "/diseases/search", fiber.Map{
		"symptoms": []string{"diamond-shaped"},
	}, &resp)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "local", resp.Source)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "Rice Blast", resp.Matches[0].Name)
	assert.Equal(t, []string{"Tricyclazole spray"}, resp.Matches[0].Treatments)
	assert.Zero(t, ident.calls, "external service must not be consulted on a local hit")
}

func TestSearchFallsBackToExternal(t *testing.T) {
	testutil.SetupDB(t)
	ident := &mockIdentifier{matches: []Match{
		{Name: "Bacterial Leaf Blight", Probability: 0.91, Source: "external"},
	}}
	app := newDiseaseApp(ident)
	seedBlast(t)

	var resp SearchResponse
	status := testutil.DoJSON(t, app, "POST", "/diseases/search", fiber.Map{
		"symptoms": []string{"yellowing stripes"},
	}, &resp)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "external", resp.Source)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "Bacterial Leaf Blight", resp.Matches[0].Name)
	assert.Equal(t, 1, ident.calls)
}

func TestSearchSurfacesIdentifierFailure(t *testing.T) {
	testutil.SetupDB(t)
	ident := &mockIdentifier{err: errors.New("upstream timeout")}
	app := newDiseaseApp(ident)

	status := testutil.DoJSON(t, app, "POST", "/diseases/search", fiber.Map{
		"symptoms": []string{"anything"},
	}, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, 1, ident.calls)
}

func TestSearchRequiresSomeQueryTerms(t *testing.T) {
	testutil.SetupDB(t)
	app := newDiseaseApp(&mockIdentifier{})

	status := testutil.DoJSON(t, app, "POST", "/diseases/search", fiber.Map{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDiseaseCRUDRoundTrip(t *testing.T) {
	testutil.SetupDB(t)
	app := newDiseaseApp(&mockIdentifier{})
	seedBlast(t)

	var got DiseaseResponse
	status := testutil.DoJSON(t, app, "GET", "/diseases/1", nil, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Rice Blast", got.Name)

	status = testutil.DoJSON(t, app, "PUT", "/diseases/1", fiber.Map{
		"name":                   "Rice Blast (Magnaporthe)",
		"affected_parts":         []string{"Leaves", "Panicles", "Nodes"},
		"symptoms":               []string{"Diamond-shaped lesions"},
		"favorable_conditions":   []string{"High humidity"},
		"treatments":             []string{"Tricyclazole spray"},
		"next_season_management": []string{"Resistant varieties"},
	}, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Rice Blast (Magnaporthe)", got.Name)
	assert.Len(t, got.AffectedParts, 3)

	status = testutil.DoJSON(t, app, "DELETE", "/diseases/1", nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status = testutil.DoJSON(t, app, "GET", "/diseases/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
