package queue

import (
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// WelcomeMailer és qui acaba enviant l'email de benvinguda (SMTP).
type WelcomeMailer interface {
	SendWelcome(to, name string) error
}

type Worker struct {
	Channel *amqp.Channel
	Mailer  WelcomeMailer
}

func NewWorker(ch *amqp.Channel, mailer WelcomeMailer) *Worker {
	return &Worker{
		Channel: ch,
		Mailer:  mailer,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.WithError(err).Fatal("welcome worker: consume failed")
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload WelcomePayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.WithError(err).Error("welcome worker: malformed payload")
				// Missatge podrit: fora de la cua, cap a la DLQ.
				d.Nack(false, false)
				continue
			}

			if err := w.Mailer.SendWelcome(payload.Email, payload.Name); err != nil {
				log.WithError(err).WithField("email", payload.Email).
					Error("welcome worker: send failed")
				d.Nack(false, false)
				continue
			}

			log.WithField("email", payload.Email).Info("welcome email sent")
			d.Ack(false)
		}
	}()

	log.WithField("queue", queueName).Info("welcome worker running")
	<-forever
}
