package main

// General API documentation for swaggo. Regenerate docs/ with
// `swag init -g cmd/docvisiond/docs.go -o docs` and build with -tags=swagger.
//
// @title           docvision API
// @version         1.0
// @description     Vision model lifecycle management, image description and text analysis.
//
// @contact.name   docvision maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
