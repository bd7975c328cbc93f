package main

import (
	"flag"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/opst/mldbkit/cmd/mldb_stub/handlers"
	"github.com/opst/mldbkit/cmd/mldb_stub/store"
	"github.com/opst/mldbkit/pkg/utils/echoutil"
)

func main() {
	addr := flag.String("addr", ":18080", "address to listen")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	e := echo.New()

	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	handlers.Register(e, store.New())

	log.Println("registered routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	cert, key := *pcert, *pkey
	if cert != "" && key != "" {
		e.Logger.Fatal(e.StartTLS(*addr, cert, key))
	} else {
		e.Logger.Fatal(e.Start(*addr))
	}
}
