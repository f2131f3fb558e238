package repositories

import (
	"fmt"
	"time"

	"trello-project/microservices/task-manager/logging"
	"trello-project/microservices/task-manager/models"

	"github.com/gocql/gocql"
)

const notificationsKeyspace = "task_notifications"

type NotificationRepo struct {
	session *gocql.Session
}

// Konstruktor za povezivanje na Cassandra bazu
func NewNotificationRepo(hosts ...string) (*NotificationRepo, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = "system"
	cluster.Timeout = 5 * time.Second
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cassandra: %w", err)
	}

	// Kreiranje keyspace-a ako ne postoji
	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS ` + notificationsKeyspace + `
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to create keyspace: %w", err)
	}

	cluster.Keyspace = notificationsKeyspace
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s keyspace: %w", notificationsKeyspace, err)
	}

	logging.Logger.Infof("Event ID: CASSANDRA_CONNECTED, Description: Connected to Cassandra keyspace %s", notificationsKeyspace)
	return &NotificationRepo{session: session}, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
	logging.Logger.Info("Event ID: CASSANDRA_CLOSED, Description: Cassandra session closed")
}

// Kreiranje tabele za notifikacije
func (nr *NotificationRepo) CreateTable() error {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID,
			username TEXT,
			user_id TEXT,
			message TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((username), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		return fmt.Errorf("failed to create notifications table: %w", err)
	}
	return nil
}

func (nr *NotificationRepo) CreateNotification(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = gocql.TimeUUID().String()
	}
	id, err := gocql.ParseUUID(notification.ID)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}

	err = nr.session.Query(
		`INSERT INTO notifications (id, username, user_id, message, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, notification.Username, notification.UserID, notification.Message, notification.CreatedAt, notification.IsRead,
	).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_INSERT_FAILED, Description: Greška prilikom kreiranja notifikacije: %v", err)
		return err
	}
	return nil
}

func (nr *NotificationRepo) GetNotificationsByUsername(username string) ([]models.Notification, error) {
	query := `SELECT id, user_id, username, message, created_at, is_read
			  FROM notifications WHERE username = ?`

	iter := nr.session.Query(query, username).Iter()
	notifications := []models.Notification{}
	var (
		id           gocql.UUID
		notification models.Notification
	)
	for iter.Scan(&id, &notification.UserID, &notification.Username,
		&notification.Message, &notification.CreatedAt, &notification.IsRead) {
		notification.ID = id.String()
		notifications = append(notifications, notification)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to read notifications for %s: %w", username, err)
	}
	return notifications, nil
}

// parseKey validates the clustering key of a single notification row.
func parseKey(notificationID, createdAt string) (gocql.UUID, time.Time, error) {
	id, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return gocql.UUID{}, time.Time{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return gocql.UUID{}, time.Time{}, fmt.Errorf("invalid created_at format: %w", err)
	}
	return id, parsed, nil
}

func (nr *NotificationRepo) MarkNotificationAsRead(username, notificationID, createdAt string) error {
	id, at, err := parseKey(notificationID, createdAt)
	if err != nil {
		return err
	}
	query := `UPDATE notifications SET is_read = true WHERE username = ? AND id = ? AND created_at = ?`
	if err := nr.session.Query(query, username, id, at).Exec(); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_UPDATE_FAILED, Description: Greška prilikom ažuriranja notifikacije: %v", err)
		return err
	}
	return nil
}

func (nr *NotificationRepo) DeleteNotification(username, notificationID, createdAt string) error {
	id, at, err := parseKey(notificationID, createdAt)
	if err != nil {
		return err
	}
	query := `DELETE FROM notifications WHERE username = ? AND id = ? AND created_at = ?`
	if err := nr.session.Query(query, username, id, at).Exec(); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_DELETE_FAILED, Description: Greška prilikom brisanja notifikacije: %v", err)
		return err
	}
	return nil
}
