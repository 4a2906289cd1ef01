package common

import (
	"flag"
	"time"
)

var Version = "v0.0.0"

var (
	Port          = flag.Int("port", 3000, "the listening port")
	ConfigPath    = flag.String("config", "", "path of the ini config file (default ~/.config/mediafeed/config.ini)")
	LogDir        = flag.String("log-dir", "", "specify the log directory")
	PrintVersion  = flag.Bool("version", false, "print version and exit")
	PrintHelpFlag = flag.Bool("help", false, "print help and exit")
)

var (
	SQLitePath = "data/mediafeed.db"
	SQLDSN     = ""
	UploadPath = "uploads"

	// UploadURLPrefix is the public path under which landed files are served.
	UploadURLPrefix = "/uploads"

	JWTSecret           = ""
	JWTLifetime         = time.Hour
	ResetTokenLifetime  = time.Hour
	VerifyTokenLifetime = time.Hour

	RedisConnString = ""

	AdminEmail    = ""
	AdminPassword = ""

	DeleteRemovesFile = true
	ItemsPerPage      = 10
	LogLevel          = "info"
)

var RedisEnabled = true
