package config

import (
	"github.com/rollcall-rfid/rollcall/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Seed      Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool   // use clean path middleware to allow multi slash requests
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
	CheckAliveURI  string // path answered by the load balancer health check
}

// Seed describes the admin created on first start when the admin table is empty.
type Seed struct {
	AdminUsername string
	AdminRFID     string
}
