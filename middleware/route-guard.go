package middleware

import (
	"net/url"
	"strings"

	"github.com/go-pkgz/auth/v2/token"
	"github.com/gofiber/fiber/v2"
)

// Paths that don't require authentication.
var publicPaths = map[string]struct{}{
	"/":       {},
	"/login":  {},
	"/signup": {},
}

// RouteGuard redirects unauthenticated page navigation to /login, keeping
// the requested path as a return target. API routes carry their own JSON
// auth middleware; the OAuth sign-in and avatar routes must stay reachable
// while logged out. Both are skipped here.
func RouteGuard(ts *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()

		if strings.HasPrefix(path, "/api") ||
			strings.HasPrefix(path, "/auth") ||
			strings.HasPrefix(path, "/avatar") {
			return c.Next()
		}
		if _, ok := publicPaths[path]; ok {
			return c.Next()
		}

		cookie := c.Cookies(CookieName)
		if cookie != "" {
			if _, err := ts.Parse(cookie); err == nil {
				return c.Next()
			}
		}

		return c.Redirect("/login?from="+url.QueryEscape(path), fiber.StatusFound)
	}
}
