package main // Entry point for the supervisor live-view server

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/FelixHertweck/seatReservation-sub000/internal/config"
	"github.com/FelixHertweck/seatReservation-sub000/internal/database"
	"github.com/FelixHertweck/seatReservation-sub000/internal/handler"
	"github.com/FelixHertweck/seatReservation-sub000/internal/hub"
	"github.com/FelixHertweck/seatReservation-sub000/internal/model"
	"github.com/FelixHertweck/seatReservation-sub000/internal/queue"
	"github.com/FelixHertweck/seatReservation-sub000/internal/repository"
	"github.com/FelixHertweck/seatReservation-sub000/internal/router"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; without it the hub fans out to this
	// instance's own subscribers only.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable or disabled; running single-instance fan-out")
	}
	h := hub.New(rdb)

	eventRepo := repository.NewEventRepo(db)
	locationRepo := repository.NewLocationRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	lv := handler.NewLiveViewHandler(eventRepo, locationRepo, reservationRepo, h)

	// Consume check-in scans from the broker: persist the live-status
	// change, then broadcast it to every watching supervisor.
	go func() {
		err := queue.StartCheckInConsumer(func(ctx context.Context, ev queue.CheckInScannedEvent) error {
			if err := reservationRepo.UpdateLiveStatus(ctx, ev.ReservationID, ev.LiveStatus); err != nil {
				return err
			}
			ss := model.SeatStatus{
				SeatID:        ev.SeatID,
				LiveStatus:    ev.LiveStatus,
				ReservationID: ev.ReservationID,
			}
			if res, err := reservationRepo.GetByID(ctx, ev.ReservationID); err == nil {
				ss.Status = res.Status
			}
			h.Broadcast(ctx, ev.EventID, ss)
			return nil
		})
		if err != nil {
			log.Printf("checkin-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e, lv, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
