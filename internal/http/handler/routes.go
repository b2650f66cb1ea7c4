package handler

import (
	"context"
	_ "embed"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"heroes/internal/model"
	"heroes/internal/service"
)

const healthTimeout = 2 * time.Second

//go:embed openapi.yaml
var openAPIDoc []byte

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers translate HTTP to service calls and carry no business logic.
func RegisterRoutes(app *fiber.App, heroSvc service.HeroService, gatherer prometheus.Gatherer) {
	app.Get("/openapi.yaml", OpenAPISpec())
	app.Get("/docs", SwaggerUI())

	app.Get("/health", HealthCheck(heroSvc))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	app.Get("/heroes", ListHeroes(heroSvc))
	app.Get("/heroes/:id", GetHero(heroSvc))
	app.Post("/heroes", CreateHero(heroSvc))
	app.Put("/heroes", UpdateHero(heroSvc))
	app.Delete("/heroes/:id", DeleteHero(heroSvc))
}

// OpenAPISpec serves the OpenAPI document compiled into the binary.
func OpenAPISpec() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(openAPIDoc)
	}
}

// SwaggerUI serves a Swagger UI page that loads /openapi.yaml.
func SwaggerUI() fiber.Handler {
	const html = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Heroes API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
	return func(c *fiber.Ctx) error {
		return c.Type("html").SendString(html)
	}
}

// HealthCheck reports whether the hero store is reachable.
func HealthCheck(heroSvc service.HeroService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()
		if err := heroSvc.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListHeroes returns every hero, or only those matching ?name= when the parameter is present.
func ListHeroes(heroSvc service.HeroService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			heroes []model.Hero
			err    error
		)
		if c.Context().QueryArgs().Has("name") {
			heroes, err = heroSvc.Search(c.UserContext(), c.Query("name"))
		} else {
			heroes, err = heroSvc.List(c.UserContext())
		}
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(heroes)
	}
}

// GetHero returns a hero by ID.
func GetHero(heroSvc service.HeroService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		h, err := heroSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(h)
	}
}

// CreateHero stores a new hero from a JSON body without an id.
func CreateHero(heroSvc service.HeroService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.HeroInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		h, err := heroSvc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(h)
	}
}

// UpdateHero replaces a hero with the full record in the JSON body.
func UpdateHero(heroSvc service.HeroService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var h model.Hero
		if err := c.BodyParser(&h); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		stored, err := heroSvc.Update(c.UserContext(), h)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(stored)
	}
}

// DeleteHero removes a hero by ID and returns the removed record.
func DeleteHero(heroSvc service.HeroService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		h, err := heroSvc.Delete(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(h)
	}
}
