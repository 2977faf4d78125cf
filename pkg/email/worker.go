package email

import (
	"log"

	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/services"
)

type Job struct {
	Type      string
	Email     string
	LoginName string
	Note      string
	Tier      models.VerificationTier
}

type Worker struct {
	Jobs chan Job
	Quit chan bool
}

type WorkerPool struct {
	sender  services.EmailService
	Jobs    chan Job
	Workers []Worker
}

// NewWorkerPool builds a bounded pool of mail workers. Delivery failures are
// logged inside the workers and never reach the enqueuing request.
func NewWorkerPool(size int, sender services.EmailService) *WorkerPool {
	jobs := make(chan Job, size)
	workers := make([]Worker, size)

	for i := 0; i < size; i++ {
		workers[i] = Worker{
			Jobs: jobs,
			Quit: make(chan bool),
		}
	}

	return &WorkerPool{Jobs: jobs, Workers: workers, sender: sender}
}

func (pool *WorkerPool) Start() {
	for id := range pool.Workers {
		log.Printf("Email worker %d started!\n", id)
		go pool.Workers[id].run(pool.sender)
	}
}

func (pool *WorkerPool) Stop() {
	for id := range pool.Workers {
		log.Printf("Email worker %d stopped!\n", id)
		go pool.Workers[id].stop()
	}
}

// Enqueue hands a job to the pool without blocking the caller; when the
// buffer is full the job is dropped and logged.
func (pool *WorkerPool) Enqueue(job Job) {
	select {
	case pool.Jobs <- job:
	default:
		log.Printf("Email queue full, dropped %s mail for %s", job.Type, job.Email)
	}
}

func (w *Worker) run(sender services.EmailService) {
	for {
		select {
		case job := <-w.Jobs:
			var err error
			switch job.Type {
			case "welcome":
				err = sender.SendWelcomeEmail(job.Email, job.LoginName)
			case "verification_submitted":
				err = sender.SendVerificationSubmittedEmail(job.Email, job.LoginName, job.Tier)
			case "verification_approved":
				err = sender.SendVerificationApprovedEmail(job.Email, job.LoginName)
			case "verification_rejected":
				err = sender.SendVerificationRejectedEmail(job.Email, job.LoginName, job.Note)
			}
			if err != nil {
				log.Printf("Email delivery failed for %s (%s): %v", job.Email, job.Type, err)
			}
		case <-w.Quit:
			return
		}
	}
}

func (w *Worker) stop() {
	w.Quit <- true
}

// PoolNotifier adapts the worker pool to the services.Notifier contract.
type PoolNotifier struct {
	pool *WorkerPool
}

func NewPoolNotifier(pool *WorkerPool) *PoolNotifier {
	return &PoolNotifier{pool: pool}
}

func (n *PoolNotifier) NotifySubmitted(user *models.User, tier models.VerificationTier) {
	n.pool.Enqueue(Job{
		Type:      "verification_submitted",
		Email:     user.PrimaryEmail,
		LoginName: user.LoginName,
		Tier:      tier,
	})
}

func (n *PoolNotifier) NotifyReviewed(user *models.User, decision models.ReviewDecision, note string) {
	jobType := "verification_approved"
	if decision == models.DecisionReject {
		jobType = "verification_rejected"
	}

	n.pool.Enqueue(Job{
		Type:      jobType,
		Email:     user.PrimaryEmail,
		LoginName: user.LoginName,
		Note:      note,
	})
}

func (n *PoolNotifier) NotifyWelcome(user *models.User) {
	n.pool.Enqueue(Job{
		Type:      "welcome",
		Email:     user.PrimaryEmail,
		LoginName: user.LoginName,
	})
}
