package main

import "authpanel/internal/app"

// @title           authpanel API
// @version         1.0
// @description     Email/password authentication with cookie sessions, registration and password reset.
// @BasePath        /
func main() {
	app.Run()
}
