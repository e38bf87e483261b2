package handler

import (
	"context"
	"net/http"
	"time"

	"autolavado/internal/apierror"
	"autolavado/internal/infra"
	"autolavado/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports breaker states and dead
// letters; never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, breakers ...*infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		dlq := gin.H{}
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			for _, q := range worker.Queues {
				if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
					dlq[q] = n
				}
			}
		}

		cbs := gin.H{}
		for _, cb := range breakers {
			if cb != nil {
				cbs[cb.Nombre()] = cb.State().String()
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":       status == http.StatusOK,
			"db":       dbStatus,
			"redis":    redisStatus,
			"breakers": cbs,
			"dlq":      dlq,
		})
	}
}

// ReprocesarDLQ moves up to ?max= dead jobs of :queue back to the live queue.
func ReprocesarDLQ(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		queue := c.Param("queue")
		valida := false
		for _, q := range worker.Queues {
			if q == queue {
				valida = true
				break
			}
		}
		if !valida {
			respondError(c, apierror.ErrNoEncontrado)
			return
		}
		n, err := worker.Reprocesar(c.Request.Context(), rdb, queue, queryInt(c, "max", 100))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"queue": queue, "reprocesados": n})
	}
}
