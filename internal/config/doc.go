// Package config provides configuration parsing for floatkit.
//
// The configuration is stored in floatkit.json in the working directory or
// one of its parents. This package handles loading, saving, and validating
// configuration.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": ":8080",
//	    "allowedOrigins": ["https://example.com"]
//	  },
//	  "tooltip": {
//	    "placement": "top",
//	    "openDelay": "",
//	    "closeDelay": "",
//	    "groupDelay": "200ms",
//	    "groupTimeout": "0s"
//	  },
//	  "metrics": {
//	    "namespace": "floatkit"
//	  },
//	  "log": {
//	    "level": "info"
//	  }
//	}
//
// Durations use Go syntax ("150ms", "1s"). An empty open or close delay
// defers to the tooltip group.
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    // errors carry codes F020-F022
//	}
//	srv := server.New(server.Config{Addr: cfg.Server.Addr})
package config
