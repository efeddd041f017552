package container

import (
	"github.com/careline/engine/cmd/escalator/service"
	"github.com/careline/engine/common/bootstrap"
	"github.com/careline/engine/common/clients"
	"github.com/careline/engine/common/joblock"
	"github.com/careline/engine/common/repository"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Repositories
	MemberRepo  *repository.MemberRepository
	CheckInRepo *repository.CheckInLogRepository

	// Sink clients
	Push    *clients.PushClient
	SMS     *clients.SMSClient
	Storage *clients.StorageClient

	// Job infrastructure
	JobLock *joblock.Lock

	// Services
	Nudge     *service.NudgeService
	HalfCycle *service.HalfCycleService
	FullCycle *service.FullCycleService
	Emergency *service.EmergencyService
	Retention *service.RetentionService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config
	log := components.Logger

	// Initialize repositories
	memberRepo := repository.NewMemberRepository(components.DB)
	checkInRepo := repository.NewCheckInLogRepository(components.DB)

	// Initialize sink clients
	pushClient := clients.NewPushClient(cfg.Push, log)
	smsClient := clients.NewSMSClient(cfg.SMS, log)
	storageClient := clients.NewStorageClient(cfg.Storage, log)

	// Job overlap lock
	lock := joblock.New(components.Redis.GetUnderlying(), cfg.Escalation.JobLockTTL, log)

	// Initialize tier services
	nudge := service.NewNudgeService(memberRepo, pushClient, cfg.Escalation, components.Metrics, log)
	halfCycle := service.NewHalfCycleService(memberRepo, pushClient, components.Cache, cfg.Escalation, components.Metrics, log)
	fullCycle := service.NewFullCycleService(memberRepo, pushClient, cfg.Escalation, components.Metrics, log)
	emergency := service.NewEmergencyService(memberRepo, smsClient, cfg.Escalation, components.Metrics, log)
	retention := service.NewRetentionService(checkInRepo, storageClient, cfg.Retention, components.Metrics, log)

	return &Container{
		Components:  components,
		MemberRepo:  memberRepo,
		CheckInRepo: checkInRepo,
		Push:        pushClient,
		SMS:         smsClient,
		Storage:     storageClient,
		JobLock:     lock,
		Nudge:       nudge,
		HalfCycle:   halfCycle,
		FullCycle:   fullCycle,
		Emergency:   emergency,
		Retention:   retention,
	}, nil
}
