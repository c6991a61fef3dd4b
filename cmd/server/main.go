package main

import (
	"net/http"
	"os"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/juqihq/feedcore/feed"
	"github.com/juqihq/feedcore/server"
	"github.com/juqihq/feedcore/utils"
	"github.com/juqihq/feedcore/utils/dotenv"
	"github.com/juqihq/feedcore/utils/flag"
	Logger "github.com/juqihq/feedcore/utils/log"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

func cleanup() {
	utils.CloseProfiler()
	utils.CloseTracer()
	Logger.Log.Info("feed api server shutdown")
}

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	utils.InitTracer()
	utils.InitProfiler()
	defer cleanup()

	db, err := utils.GetDBConnection()
	if err != nil {
		Logger.Log.Fatal("cannot connect to DB: ", err)
	}

	// cache is best-effort: a missing redis only disables caching
	var cache feed.CacheStore
	if store, err := utils.GetRedisCacheStore(); err != nil {
		Logger.Log.Warn("redis unavailable, running uncached: ", err)
	} else {
		cache = store
	}

	var stats statsd.ClientInterface
	if client, err := statsd.New(os.Getenv("DD_AGENT_HOST")); err != nil {
		Logger.Log.Warn("statsd unavailable: ", err)
	} else {
		stats = client
	}

	router := feed.NewRouter(db, cache, stats, feed.NewHostRewriteResolverFromEnv())

	// Default With the Logger and Recovery middleware already attached
	engine := gin.Default()
	engine.Use(cors.Default())
	engine.Use(gintrace.Middleware(flag.ServiceName))

	engine.POST("/api/feeds", server.FeedHandler(router))
	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	Logger.Log.Info("feed api server starts up")
	engine.Run(":8080")
}
