package entities

import (
	"encoding/json"

	"github.com/giantswarm/mcp-kong/internal/admin"
)

// record is one upstream entity keyed by field name. Values are never
// inspected; a projection only picks and renames keys, so a field keeps
// whatever JSON type the Admin API sent. Absent keys project as null.
type record map[string]admin.RawJSON

// newRecord splits raw into its fields. Anything other than a JSON object
// yields an empty record.
func newRecord(raw admin.RawJSON) record {
	rec := record{}
	if raw.IsObject() {
		_ = json.Unmarshal(raw, &rec)
	}
	return rec
}

// ref returns the id of an embedded foreign key object such as
// {"id": "..."}, or null when key holds anything else.
func (r record) ref(key string) admin.RawJSON {
	return newRecord(r[key])["id"]
}

// Service is the normalized projection of an Admin API service.
// Fields missing upstream serialize as null.
type Service struct {
	ID             admin.RawJSON `json:"id"`
	Name           admin.RawJSON `json:"name"`
	Host           admin.RawJSON `json:"host"`
	Port           admin.RawJSON `json:"port"`
	Protocol       admin.RawJSON `json:"protocol"`
	Path           admin.RawJSON `json:"path"`
	Retries        admin.RawJSON `json:"retries"`
	ConnectTimeout admin.RawJSON `json:"connectTimeout"`
	WriteTimeout   admin.RawJSON `json:"writeTimeout"`
	ReadTimeout    admin.RawJSON `json:"readTimeout"`
	Tags           admin.RawJSON `json:"tags"`
	CreatedAt      admin.RawJSON `json:"createdAt"`
	UpdatedAt      admin.RawJSON `json:"updatedAt"`
}

func normalizeService(r record) Service {
	return Service{
		ID:             r["id"],
		Name:           r["name"],
		Host:           r["host"],
		Port:           r["port"],
		Protocol:       r["protocol"],
		Path:           r["path"],
		Retries:        r["retries"],
		ConnectTimeout: r["connect_timeout"],
		WriteTimeout:   r["write_timeout"],
		ReadTimeout:    r["read_timeout"],
		Tags:           r["tags"],
		CreatedAt:      r["created_at"],
		UpdatedAt:      r["updated_at"],
	}
}

// Route is the normalized projection of an Admin API route. Service is the
// upstream reference object, passed through unchanged.
type Route struct {
	ID        admin.RawJSON `json:"id"`
	Name      admin.RawJSON `json:"name"`
	Protocols admin.RawJSON `json:"protocols"`
	Methods   admin.RawJSON `json:"methods"`
	Hosts     admin.RawJSON `json:"hosts"`
	Paths     admin.RawJSON `json:"paths"`
	Service   admin.RawJSON `json:"service"`
	Tags      admin.RawJSON `json:"tags"`
	CreatedAt admin.RawJSON `json:"createdAt"`
	UpdatedAt admin.RawJSON `json:"updatedAt"`
}

func normalizeRoute(r record) Route {
	return Route{
		ID:        r["id"],
		Name:      r["name"],
		Protocols: r["protocols"],
		Methods:   r["methods"],
		Hosts:     r["hosts"],
		Paths:     r["paths"],
		Service:   r["service"],
		Tags:      r["tags"],
		CreatedAt: r["created_at"],
		UpdatedAt: r["updated_at"],
	}
}

// Consumer is the normalized projection of an Admin API consumer.
type Consumer struct {
	ID        admin.RawJSON `json:"id"`
	Username  admin.RawJSON `json:"username"`
	CustomID  admin.RawJSON `json:"customId"`
	Tags      admin.RawJSON `json:"tags"`
	CreatedAt admin.RawJSON `json:"createdAt"`
	UpdatedAt admin.RawJSON `json:"updatedAt"`
}

func normalizeConsumer(r record) Consumer {
	return Consumer{
		ID:        r["id"],
		Username:  r["username"],
		CustomID:  r["custom_id"],
		Tags:      r["tags"],
		CreatedAt: r["created_at"],
		UpdatedAt: r["updated_at"],
	}
}

// Plugin is the normalized projection of an Admin API plugin. The scoping
// references are flattened to their ids.
type Plugin struct {
	ID         admin.RawJSON `json:"id"`
	Name       admin.RawJSON `json:"name"`
	Enabled    admin.RawJSON `json:"enabled"`
	ServiceID  admin.RawJSON `json:"serviceId"`
	RouteID    admin.RawJSON `json:"routeId"`
	ConsumerID admin.RawJSON `json:"consumerId"`
	Config     admin.RawJSON `json:"config"`
	CreatedAt  admin.RawJSON `json:"createdAt"`
	UpdatedAt  admin.RawJSON `json:"updatedAt"`
}

// NormalizePlugin projects one raw plugin record. It never fails; a record
// that is not a JSON object projects to all nulls.
func NormalizePlugin(raw admin.RawJSON) Plugin {
	r := newRecord(raw)
	return Plugin{
		ID:         r["id"],
		Name:       r["name"],
		Enabled:    r["enabled"],
		ServiceID:  r.ref("service"),
		RouteID:    r.ref("route"),
		ConsumerID: r.ref("consumer"),
		Config:     r["config"],
		CreatedAt:  r["created_at"],
		UpdatedAt:  r["updated_at"],
	}
}
