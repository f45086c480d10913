// Package search narrows a loaded inventory by a free-text query. The
// working set is one user's own cars, so a linear scan is enough; there is
// no index.
package search

import (
	"strings"

	"github.com/krishkalaria12/car-vault/models"
)

// Filter returns the cars whose searchable text contains the query,
// case-insensitively, preserving order. An empty query returns the input
// unchanged.
func Filter(cars []models.Car, query string) []models.Car {
	if query == "" {
		return cars
	}

	q := strings.ToLower(query)
	matched := make([]models.Car, 0, len(cars))
	for _, car := range cars {
		if strings.Contains(searchText(car), q) {
			matched = append(matched, car)
		}
	}
	return matched
}

// searchText concatenates every searchable field into one lower-cased
// string: title, description, car type, company, dealer, then tags.
func searchText(car models.Car) string {
	parts := []string{
		car.Title,
		car.Description,
		car.CarType,
		car.Company,
		car.Dealer,
		strings.Join(car.Tags, " "),
	}
	return strings.ToLower(strings.Join(parts, " "))
}
