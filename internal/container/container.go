package container

import (
	"context"
	"log"
	"time"

	"fonegitim-api-io/api/internal/common"
	"fonegitim-api-io/api/pkg/controllers"
	"fonegitim-api-io/api/pkg/email"
	"fonegitim-api-io/api/pkg/services"
	"fonegitim-api-io/api/pkg/util"
)

const emailWorkerCount = 4

type ServiceContainer struct {
	UserService         services.UserService
	VerificationService services.VerificationService
	CampaignService     services.CampaignService
	PaymentService      services.PaymentService

	UserController         *controllers.UserController
	VerificationController *controllers.VerificationController
	CampaignController     *controllers.CampaignController
	PaymentController      *controllers.PaymentController

	MailPool *email.WorkerPool
}

func NewServiceContainer() *ServiceContainer {
	userService := services.NewUserService()
	emailService := services.NewEmailService()

	mailPool := email.NewWorkerPool(emailWorkerCount, emailService)
	mailPool.Start()
	notifier := email.NewPoolNotifier(mailPool)

	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := services.EnsureVerificationIndexes(indexCtx, common.StudentVerificationCollection()); err != nil {
		log.Fatal(err)
	}

	verificationStore := services.NewMongoVerificationStore(common.StudentVerificationCollection())
	submitLimiter := services.NewRedisSubmitLimiter(util.Redis(), common.MAX_SUBMITS_PER_WINDOW, common.SUBMIT_WINDOW)
	verificationService := services.NewVerificationService(verificationStore, submitLimiter, userService, notifier)

	campaignService := services.NewCampaignService(verificationService)
	paymentService := services.NewPaymentService()

	return &ServiceContainer{
		UserService:         userService,
		VerificationService: verificationService,
		CampaignService:     campaignService,
		PaymentService:      paymentService,

		UserController:         controllers.InitUserController(userService, notifier),
		VerificationController: controllers.InitVerificationController(verificationService),
		CampaignController:     controllers.InitCampaignController(campaignService),
		PaymentController:      controllers.InitPaymentController(paymentService),

		MailPool: mailPool,
	}
}
