package handlers

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"authpanel/internal/middleware"
	"authpanel/internal/services"
)

type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>Dashboard</title></head>
<body>
  <h1>Dashboard</h1>
  <p>Signed in as {{.Name}} ({{.Email}})</p>
  <form method="post" action="/api/auth/signout"><button type="submit">Sign out</button></form>
</body>
</html>`))

func (h *PageHandler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, services.DefaultRedirectPath)
}

// Dashboard is the single protected page; the gate guarantees claims exist.
func (h *PageHandler) Dashboard(c *gin.Context) {
	claims, ok := middleware.SessionClaims(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	name := claims.Name
	if name == "" {
		name = claims.Email
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	_ = dashboardTmpl.Execute(c.Writer, gin.H{"Name": name, "Email": claims.Email})
}

func (h *PageHandler) Login(c *gin.Context) {
	servePage(c, loginPage)
}

func (h *PageHandler) Register(c *gin.Context) {
	servePage(c, registerPage)
}

func (h *PageHandler) ForgotPassword(c *gin.Context) {
	servePage(c, forgotPasswordPage)
}

func servePage(c *gin.Context, body string) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

const loginPage = `<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
  <h1>Sign in</h1>
  <form id="login">
    <input name="email" type="email" placeholder="Email" required>
    <input name="password" type="password" placeholder="Password" required>
    <button type="submit">Sign in</button>
  </form>
  <p><a href="/register">Create an account</a> &middot; <a href="/forgot-password">Forgot password?</a></p>
</body>
</html>`

const registerPage = `<!DOCTYPE html>
<html>
<head><title>Register</title></head>
<body>
  <h1>Create an account</h1>
  <form id="register">
    <input name="name" type="text" placeholder="Name">
    <input name="email" type="email" placeholder="Email" required>
    <input name="password" type="password" placeholder="Password" required>
    <input name="confirmPassword" type="password" placeholder="Confirm password" required>
    <button type="submit">Register</button>
  </form>
  <p><a href="/login">Already have an account?</a></p>
</body>
</html>`

const forgotPasswordPage = `<!DOCTYPE html>
<html>
<head><title>Reset password</title></head>
<body>
  <h1>Reset your password</h1>
  <form id="send-code">
    <input name="email" type="email" placeholder="Email" required>
    <button type="submit">Send reset code</button>
  </form>
  <form id="reset">
    <input name="code" type="text" placeholder="Reset code" required>
    <input name="password" type="password" placeholder="New password" required>
    <input name="confirmPassword" type="password" placeholder="Confirm password" required>
    <button type="submit">Reset password</button>
  </form>
</body>
</html>`
