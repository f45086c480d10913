package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishkalaria12/car-vault/models"
)

func sampleCars() []models.Car {
	return []models.Car{
		{ID: "1", Title: "Civic", Description: "clean daily driver", CarType: "Sedan", Company: "Honda", Dealer: "Downtown Motors", Tags: []string{"reliable"}},
		{ID: "2", Title: "Model 3", Description: "long range", CarType: "Sedan", Company: "Tesla", Dealer: "EV World", Tags: []string{"electric", "fast"}},
		{ID: "3", Title: "Wrangler", Description: "lifted, offroad ready", CarType: "SUV", Company: "Jeep", Dealer: "Hill Country Auto", Tags: []string{"4x4"}},
	}
}

func TestFilterEmptyQueryIsIdentity(t *testing.T) {
	cars := sampleCars()
	got := Filter(cars, "")
	require.Len(t, got, len(cars))
	for i := range cars {
		assert.Equal(t, cars[i].ID, got[i].ID)
	}
}

func TestFilterIsOrderedSubsequence(t *testing.T) {
	cars := sampleCars()
	got := Filter(cars, "sedan")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}

func TestFilterCaseInsensitive(t *testing.T) {
	cars := sampleCars()
	for _, q := range []string{"honda", "HONDA", "HoNdA"} {
		got := Filter(cars, q)
		require.Len(t, got, 1, "query %q", q)
		assert.Equal(t, "1", got[0].ID)
	}

	lower := Filter(cars, strings.ToLower("ELECTRIC"))
	upper := Filter(cars, strings.ToUpper("electric"))
	assert.Equal(t, lower, upper)
}

func TestFilterMatchesEveryField(t *testing.T) {
	cars := sampleCars()

	byDealer := Filter(cars, "hill country")
	require.Len(t, byDealer, 1)
	assert.Equal(t, "3", byDealer[0].ID)

	byTag := Filter(cars, "4x4")
	require.Len(t, byTag, 1)
	assert.Equal(t, "3", byTag[0].ID)

	byDescription := Filter(cars, "long range")
	require.Len(t, byDescription, 1)
	assert.Equal(t, "2", byDescription[0].ID)
}

func TestFilterNoMatch(t *testing.T) {
	got := Filter(sampleCars(), "motorcycle")
	assert.Empty(t, got)
}
