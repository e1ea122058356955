// A very simple gin HTTP server
// for reading the latest simulation report
// without digging through the JSON file.
// The gui asks the harness bridge for the
// current report and renders it as text
// next to the raw data.
package gui

import (
	"net/http"

	"github.com/amsen20/placebid/sim"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var reportRequestStream chan<- struct{}
var reportStream <-chan *sim.Report
var router *gin.Engine

type Bridge struct {
	ReportRequestStream chan<- struct{}
	ReportStream        <-chan *sim.Report
}

func registerRoutes() {
	router.GET("/report", func(ctx *gin.Context) {
		reportRequestStream <- struct{}{}
		ctx.JSON(http.StatusOK, <-reportStream)
	})

	router.POST("/display", func(ctx *gin.Context) {
		reportRequestStream <- struct{}{}
		ctx.JSON(http.StatusOK, gin.H{
			"content": (<-reportStream).Display(),
		})
	})

	router.GET("/", func(ctx *gin.Context) {
		ctx.HTML(http.StatusOK, "index.html", gin.H{})
	})
}

func SetUp(bridge Bridge) {
	reportRequestStream = bridge.ReportRequestStream
	reportStream = bridge.ReportStream

	router = gin.Default()
	router.LoadHTMLFiles("./internal/gui/index.html")

	router.Use(cors.Default())

	registerRoutes()
}

func Run() {
	router.Run(":8080")
}
