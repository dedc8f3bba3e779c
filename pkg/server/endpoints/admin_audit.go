package endpoints

import (
	"net/http"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server"
)

// RegisterAdminAuditEndpoints registers the audit trail listing
func RegisterAdminAuditEndpoints(s *server.Server) {
	s.Router.HandleFunc("/admin/audit-logs",
		requirePermission(s.Permissions, permission.ResourceAuditLogs, role.ActionView,
			handleListAuditLogs(s)),
	).Methods("GET")
}

func handleListAuditLogs(s *server.Server) http.HandlerFunc {
	logger := s.Logger.Named("admin")

	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := pagination(r, s.Config)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		msgID := r.URL.Query().Get("msgid")
		if msgID != "" && !isOneOf(msgID, audit.MessageIDs) {
			respondWithError(w, http.StatusBadRequest, "invalid msgid: "+msgID)
			return
		}

		if s.AuditLogs == nil {
			respondWithJSON(w, http.StatusOK, []audit.Message{})
			return
		}

		messages, err := s.AuditLogs.List(r.Context(), audit.ListOptions{
			MsgID:  msgID,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			respondWithServerError(w, logger, "failed to list audit logs", err)
			return
		}
		if messages == nil {
			messages = []audit.Message{}
		}
		respondWithJSON(w, http.StatusOK, messages)
	}
}
