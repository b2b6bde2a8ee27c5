package service

import (
	"log"
	"sync"
	"time"

	"anime-watchlist/internal/timeutil"
)

// Scheduler runs the weekly data backup
type Scheduler struct {
	backupSvc Backuper
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// NewScheduler creates a new Scheduler
func NewScheduler(backupSvc Backuper) *Scheduler {
	return &Scheduler{
		backupSvc: backupSvc,
		stopChan:  make(chan struct{}),
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() {
	go s.runWeeklyBackupScheduler()
	log.Println("Scheduler started - Weekly backup on Sundays at 03:00")
}

// Stop stops all scheduled tasks
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Scheduler) runWeeklyBackupScheduler() {
	for {
		nextRun := NextBackupTime(timeutil.Now())
		duration := time.Until(nextRun)

		log.Printf("Next backup scheduled at %s (in %v)", nextRun.Format("2006-01-02 15:04:05"), duration.Round(time.Hour))

		timer := time.NewTimer(duration)
		select {
		case <-timer.C:
			log.Println("Running weekly backup...")
			backupPath, err := s.backupSvc.Backup()
			if err != nil {
				log.Printf("Failed to create backup: %v", err)
			} else {
				log.Printf("Backup created successfully: %s", backupPath)
			}
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

// NextBackupTime returns the first Sunday 03:00 strictly after now
func NextBackupTime(now time.Time) time.Time {
	daysUntilSunday := (7 - int(now.Weekday())) % 7
	if daysUntilSunday == 0 {
		backupTime := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
		if !now.Before(backupTime) {
			daysUntilSunday = 7
		}
	}

	nextSunday := now.AddDate(0, 0, daysUntilSunday)
	return time.Date(nextSunday.Year(), nextSunday.Month(), nextSunday.Day(), 3, 0, 0, 0, now.Location())
}
