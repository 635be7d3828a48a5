// Package config loads reactor.json, the configuration read by the
// reactor command.
//
// # Configuration File Structure
//
//	{
//	  "name": "counter",
//	  "live": {
//	    "addr": ":3000",
//	    "path": "/live",
//	    "metricsPath": "/metrics",
//	    "readTimeout": "60s",
//	    "writeTimeout": "10s",
//	    "maxMessageSize": 65536
//	  },
//	  "snapshot": {
//	    "bucket": "my-site",
//	    "prefix": "pages",
//	    "region": "eu-west-1",
//	    "endpoint": "http://localhost:9000"
//	  },
//	  "debug": false
//	}
//
// Every field is optional. Invalid values are reported as CFG001 errors.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Live.Addr)
package config
