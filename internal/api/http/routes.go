// Package httpapi serves forecasts and location search over HTTP.
package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"nimbus/internal/db"
	"nimbus/internal/model"
	"nimbus/internal/resource"
)

var validate = validator.New()

// Source issues forecast and geocoding reads as resource sequences.
type Source interface {
	GetWeather(ctx context.Context, q model.WeatherQuery) <-chan resource.Resource[model.WeatherQueryResult]
	SearchLocations(ctx context.Context, query string) <-chan resource.Resource[[]model.LocationCandidate]
}

// Routes holds what the handlers need.
type Routes struct {
	Source Source
	// DB enables /api/v1/places when set.
	DB      *sql.DB
	Exclude []string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, r Routes) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		query := q.toModel()
		query.Exclude = r.Exclude

		ctx := c.UserContext()
		result, err := resource.Await(ctx, r.Source.GetWeather(ctx, query))
		if err != nil {
			return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
		}
		return respond[model.WeatherQueryResult](c, result)
	})

	v1.Get("/locations", func(c *fiber.Ctx) error {
		q := locationQuery{Query: strings.TrimSpace(c.Query("q"))}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx := c.UserContext()
		result, err := resource.Await(ctx, r.Source.SearchLocations(ctx, q.Query))
		if err != nil {
			return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
		}
		return respond[[]model.LocationCandidate](c, result)
	})

	if r.DB != nil {
		v1.Get("/places", func(c *fiber.Ctx) error {
			places, err := db.ListPlaces(r.DB, c.Query("filter"))
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed to list places")
			}
			if places == nil {
				places = []model.Place{}
			}
			return c.JSON(places)
		})
	}
}

// respond writes a terminal envelope: Success as 200, Error as 502.
func respond[T any](c *fiber.Ctx, r resource.Resource[T]) error {
	switch v := r.(type) {
	case resource.Success[T]:
		return c.JSON(v.Data)
	case resource.Error[T]:
		return fiber.NewError(fiber.StatusBadGateway, v.Message)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "request did not complete")
}

// weatherQuery holds query parameters for the forecast endpoint.
type weatherQuery struct {
	Lat   *float64 `validate:"required,gte=-90,lte=90"`
	Lon   *float64 `validate:"required,gte=-180,lte=180"`
	Units string   `validate:"omitempty,oneof=metric imperial standard"`
}

func (q weatherQuery) toModel() model.WeatherQuery {
	units := q.Units
	if units == "" {
		units = model.UnitsMetric
	}
	return model.WeatherQuery{Lat: *q.Lat, Lon: *q.Lon, Units: units}
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	var q weatherQuery
	var err error

	if q.Lat, err = parseCoord(c.Query("lat"), "lat"); err != nil {
		return q, err
	}
	if q.Lon, err = parseCoord(c.Query("lon"), "lon"); err != nil {
		return q, err
	}
	q.Units = strings.ToLower(c.Query("units"))

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func parseCoord(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.New(name + " must be a number")
	}
	return &f, nil
}

// locationQuery holds query parameters for the search endpoint.
type locationQuery struct {
	Query string `validate:"required,min=3"`
}
