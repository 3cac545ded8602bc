package http

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gymdesk/gymdesk/internal/application/membership/usecases"
	"github.com/gymdesk/gymdesk/internal/domain/membership"
	"github.com/gymdesk/gymdesk/internal/infrastructure/cache"
	"github.com/gymdesk/gymdesk/internal/infrastructure/config"
	"github.com/gymdesk/gymdesk/internal/infrastructure/email"
	"github.com/gymdesk/gymdesk/internal/infrastructure/payment/cashfree"
	"github.com/gymdesk/gymdesk/internal/shared/logger"
)

type allUseCases struct {
	runExpirationCycle  *usecases.RunExpirationCycleUseCase
	getMembershipWindow *usecases.GetMembershipWindowUseCase
	// syncPaymentStatus is nil when no gateway credentials are configured.
	syncPaymentStatus *usecases.SyncPaymentStatusUseCase
}

func newUseCases(cfg *config.Config, repos *repositories, redisClient *redis.Client, log logger.Interface) (*allUseCases, error) {
	policy, err := membership.ParseMatchPolicy(
		cfg.Membership.TotalTolerance,
		cfg.Membership.NearestMaxDiff,
		cfg.Membership.NearestMaxRatio,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid membership match policy: %w", err)
	}
	resolver := membership.NewEndDateResolver(policy)

	notifier, err := email.NewExpirationNotifier(&cfg.Email, log.Named("notifier"))
	if err != nil {
		return nil, fmt.Errorf("failed to create expiration notifier: %w", err)
	}

	var ledger usecases.NoticeLedger
	var locker usecases.CycleLocker
	if redisClient != nil {
		ledger = cache.NewRedisNoticeLedger(redisClient)
		locker = cache.NewRedsyncCycleLocker(redisClient, cache.DefaultCycleLockTTL, log)
	} else {
		log.Warnw("redis not configured, notice ledger is in-memory and cycles are not locked across instances")
		ledger = cache.NewMemoryNoticeLedger()
	}

	cycleCfg := usecases.DefaultExpirationCycleConfig()
	if len(cfg.Membership.NoticeThresholds) > 0 {
		cycleCfg.Thresholds = cfg.Membership.NoticeThresholds
	}
	cycleCfg.NotifyInterval = cfg.Membership.NotifyInterval
	if cfg.Membership.NoticeTTL > 0 {
		cycleCfg.NoticeTTL = cfg.Membership.NoticeTTL
	}

	ucs := &allUseCases{
		runExpirationCycle: usecases.NewRunExpirationCycleUseCase(
			repos.member,
			repos.payment,
			repos.plan,
			resolver,
			notifier,
			ledger,
			locker,
			cycleCfg,
			log.Named("expiration-cycle"),
		),
		getMembershipWindow: usecases.NewGetMembershipWindowUseCase(
			repos.member,
			repos.payment,
			repos.plan,
			resolver,
			log.Named("membership-window"),
		),
	}

	if cfg.Gateway.Enabled() {
		ucs.syncPaymentStatus = usecases.NewSyncPaymentStatusUseCase(
			repos.payment,
			repos.member,
			cashfree.NewClient(&cfg.Gateway, log.Named("cashfree")),
			repos.txManager,
			cfg.Gateway.SyncLookback,
			log.Named("payment-sync"),
		)
	} else {
		log.Infow("payment gateway credentials not configured, payment sync disabled")
	}

	return ucs, nil
}
