package rmq

import (
	"fmt"
	"net/url"
)

// FormatConnectionString builds a URI that will permit an AMQP client to connect to the
// RabbitMQ server described by the provided config values
func FormatConnectionString(host string, port int, vhost, user, password string) string {
	urlencodedUser := url.QueryEscape(user)
	urlencodedPassword := url.QueryEscape(password)
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s", urlencodedUser, urlencodedPassword, host, port, url.PathEscape(vhost))
}
