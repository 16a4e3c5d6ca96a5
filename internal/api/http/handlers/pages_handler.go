package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const forbiddenPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>403 Forbidden</title>
</head>
<body>
<h1>403 Forbidden</h1>
<p>You do not have permission to view this page.</p>
<p><a href="/">Go to home</a> <button type="button" onclick="history.back()">Go back</button></p>
</body>
</html>
`

const adminPlaceholderPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>VRCFace Admin</title>
</head>
<body>
<h1>VRCFace Admin</h1>
<p>Admin assets are not installed on this server.</p>
</body>
</html>
`

// Forbidden serves GET /403.
func Forbidden(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Status(http.StatusForbidden).SendString(forbiddenPage)
}

// AdminPlaceholder serves /admin when no admin asset directory is configured.
func AdminPlaceholder(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(adminPlaceholderPage)
}
