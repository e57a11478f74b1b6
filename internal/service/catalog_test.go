package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pageza/vinoteca/backend/internal/database"
	"github.com/pageza/vinoteca/backend/internal/model"
	"github.com/pageza/vinoteca/backend/internal/testhelpers"
	"github.com/pageza/vinoteca/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSeededCatalog(t *testing.T) *CatalogService {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	testhelpers.SeedCatalog(t, db)
	return NewCatalogService(database.NewCatalogStore(db), zap.NewNop())
}

func TestCatalogService_TopRated(t *testing.T) {
	svc := newSeededCatalog(t)

	wines, err := svc.TopRated(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{
		testhelpers.MugaReserva,
		testhelpers.CatenaMalbec,
		testhelpers.CloudyBaySauvBlanc,
		testhelpers.HouseRed,
	}, wineIDs(wines))

	muga := wines[0]
	assert.Equal(t, []string{"roast lamb", "chorizo"}, muga.FoodPairings)
	require.NotNil(t, muga.Vineyard)
	assert.Equal(t, "Bodegas Muga", muga.Vineyard.Name)
	assert.Equal(t, "Rioja DOCa", muga.Appellation)
	assert.Equal(t, "Rioja", muga.Region)
	assert.Equal(t, "Spain", muga.Country)

	house := wines[3]
	assert.Nil(t, house.Vineyard)
	assert.Empty(t, house.Region)
	assert.Equal(t, []string{"pizza"}, house.FoodPairings)
}

func TestCatalogService_Search(t *testing.T) {
	svc := newSeededCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		filters map[string]string
		want    []int64
		wantErr error
	}{
		{name: "grape is case insensitive", filters: map[string]string{"grape": "MALBEC"}, want: []int64{testhelpers.CatenaMalbec}},
		{name: "region via vineyard", filters: map[string]string{"region": "rioja"}, want: []int64{testhelpers.MugaReserva}},
		{name: "appelation spelling", filters: map[string]string{"appelation": "doca"}, want: []int64{testhelpers.MugaReserva}},
		{name: "appellation spelling", filters: map[string]string{"appellation": "marlborough"}, want: []int64{testhelpers.CloudyBaySauvBlanc}},
		{name: "vineyard name", filters: map[string]string{"vineyard": "catena"}, want: []int64{testhelpers.CatenaMalbec}},
		{name: "year is exact", filters: map[string]string{"year": "2018"}, want: []int64{testhelpers.MugaReserva}},
		{name: "classification", filters: map[string]string{"classification": "red"}, want: []int64{testhelpers.MugaReserva, testhelpers.CatenaMalbec, testhelpers.HouseRed}},
		{name: "food excludes unrated", filters: map[string]string{"food": "steak"}, want: []int64{testhelpers.CatenaMalbec}},
		{name: "combined", filters: map[string]string{"classification": "red", "country": "argentina"}, want: []int64{testhelpers.CatenaMalbec}},
		{name: "unknown keys ignored", filters: map[string]string{"mood": "happy", "name": "house"}, want: []int64{testhelpers.HouseRed}},
		{name: "wildcards are literal", filters: map[string]string{"name": "%"}, want: []int64{}},
		{name: "no match", filters: map[string]string{"grape": "zinfandel"}, want: []int64{}},
		{name: "bad year", filters: map[string]string{"year": "vintage"}, wantErr: ErrInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wines, err := svc.Search(ctx, tt.filters)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, wineIDs(wines))
		})
	}
}

func TestCatalogService_SearchByField(t *testing.T) {
	svc := newSeededCatalog(t)

	wines, err := svc.SearchByField(context.Background(), "country", "New Zealand")
	require.NoError(t, err)
	assert.Equal(t, []int64{testhelpers.CloudyBaySauvBlanc}, wineIDs(wines))

	_, err = svc.SearchByField(context.Background(), "mood", "happy")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestCatalogService_Refine(t *testing.T) {
	svc := newSeededCatalog(t)

	wines, err := svc.Refine(context.Background(), types.ModelFilter{Grape: "malbec", Year: 2019})
	require.NoError(t, err)
	assert.Equal(t, []int64{testhelpers.CatenaMalbec}, wineIDs(wines))

	all, err := svc.Refine(context.Background(), types.ModelFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCatalogService_ProbeFoodPairing(t *testing.T) {
	svc := newSeededCatalog(t)
	ctx := context.Background()

	wines, err := svc.ProbeFoodPairing(ctx, "Steak")
	require.NoError(t, err)
	assert.Equal(t, []int64{testhelpers.CatenaMalbec}, wineIDs(wines))

	blank, err := svc.ProbeFoodPairing(ctx, "   ")
	require.NoError(t, err)
	assert.NotNil(t, blank)
	assert.Empty(t, blank)
}

func TestCatalogService_GetWineMatchesSearchResult(t *testing.T) {
	svc := newSeededCatalog(t)
	ctx := context.Background()

	found, err := svc.Search(ctx, map[string]string{"name": "Catena"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	wine, err := svc.GetWine(ctx, testhelpers.CatenaMalbec)
	require.NoError(t, err)
	assert.Equal(t, found[0], *wine)

	unrated, err := svc.GetWine(ctx, testhelpers.UnratedRose)
	require.NoError(t, err)
	assert.Nil(t, unrated.Rating)
	assert.Equal(t, []string{"steak tartare"}, unrated.FoodPairings)

	_, err = svc.GetWine(ctx, 999)
	assert.ErrorIs(t, err, ErrWineNotFound)

	_, err = svc.Vineyard(ctx, 999)
	assert.ErrorIs(t, err, ErrVineyardNotFound)

	pairings, err := svc.FoodPairings(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, pairings)
}

func TestCatalogService_EnrichmentFailureIsPerRecord(t *testing.T) {
	store := new(mockStore)
	vineyardID := int64(10)
	store.On("FindWines", mock.Anything, mock.Anything).Return([]model.Wine{
		{ID: 1, Name: "First"},
		{ID: 2, Name: "Second", VineyardID: &vineyardID},
		{ID: 3, Name: "Third", VineyardID: &vineyardID},
	}, nil)
	store.On("FoodPairings", mock.Anything, int64(1)).Return(nil, errors.New("connection reset"))
	store.On("FoodPairings", mock.Anything, int64(2)).Return([]string{"duck"}, nil)
	store.On("FoodPairings", mock.Anything, int64(3)).Return([]string{}, nil)
	store.On("Vineyard", mock.Anything, vineyardID).Return(&model.Vineyard{ID: vineyardID, Name: "Clos", Region: "Burgundy"}, nil)

	svc := NewCatalogService(store, zap.NewNop())
	wines, err := svc.TopRated(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, wineIDs(wines))
	assert.Equal(t, []string{}, wines[0].FoodPairings)
	assert.Equal(t, []string{"duck"}, wines[1].FoodPairings)
	assert.Equal(t, "Burgundy", wines[1].Region)
	assert.Equal(t, "Burgundy", wines[2].Region)
	store.AssertExpectations(t)
}

func TestCatalogService_PrimaryQueryFailure(t *testing.T) {
	store := new(mockStore)
	store.On("FindWines", mock.Anything, mock.Anything).Return(nil, errors.New("relation \"wines\" does not exist"))

	svc := NewCatalogService(store, zap.NewNop())
	_, err := svc.Refine(context.Background(), types.ModelFilter{Grape: "Malbec"})
	assert.ErrorIs(t, err, ErrCatalogQuery)
}

func TestCatalogService_BlankProbeSkipsStore(t *testing.T) {
	store := new(mockStore)
	svc := NewCatalogService(store, zap.NewNop())

	wines, err := svc.ProbeFoodPairing(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, wines)
	store.AssertNotCalled(t, "FindWines", mock.Anything, mock.Anything)
}
