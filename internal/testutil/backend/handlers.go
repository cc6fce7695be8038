package backend

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"fieldsync/internal/domain"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	s.mu.Lock()
	var found *account
	for _, a := range s.accounts {
		if a.Username == req.Username {
			found = a
			break
		}
	}
	var acct account
	if found != nil {
		acct = *found
	}
	tm := s.tokens
	s.mu.Unlock()

	if found == nil || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !acct.Active {
		writeError(w, http.StatusForbidden, "account disabled")
		return
	}

	token, err := tm.Generate(domain.SessionUser{ID: acct.ID, Username: acct.Username, Role: acct.Role})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jwt":      token,
		"id":       acct.ID,
		"username": acct.Username,
		"role":     acct.Role,
	})
}

func (s *Server) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]domain.Incident{}, s.incidents...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	id, _ := idVar(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inc := range s.incidents {
		if inc.ID == id {
			writeJSON(w, http.StatusOK, inc)
			return
		}
	}
	writeError(w, http.StatusNotFound, "incident not found")
}

func (s *Server) handleCreateIncident(w http.ResponseWriter, r *http.Request) {
	var in domain.IncidentInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	claims := claimsFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.boundaries[claims.UserID]; ok {
		b := domain.Boundary{UserID: claims.UserID, Geometry: &g}
		if !b.Contains(claims.Role, in.Latitude, in.Longitude) {
			writeError(w, http.StatusBadRequest, "incident location is outside the assigned boundary")
			return
		}
	}
	s.nextIncID++
	inc := domain.Incident{
		ID:           s.nextIncID,
		Title:        in.Title,
		Description:  in.Description,
		IncidentType: in.IncidentType,
		Priority:     in.Priority,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		ReportedBy:   claims.UserID,
		OccurredAt:   "2026-01-01T00:00:00",
		Status:       in.Status,
	}
	s.incidents = append(s.incidents, inc)
	writeJSON(w, http.StatusCreated, inc)
}

func (s *Server) handleUpdateIncident(w http.ResponseWriter, r *http.Request) {
	id, _ := idVar(r, "id")
	var in domain.IncidentInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, inc := range s.incidents {
		if inc.ID != id {
			continue
		}
		inc.Title, inc.Description, inc.IncidentType = in.Title, in.Description, in.IncidentType
		inc.Priority, inc.Latitude, inc.Longitude, inc.Status = in.Priority, in.Latitude, in.Longitude, in.Status
		s.incidents[i] = inc
		writeJSON(w, http.StatusOK, inc)
		return
	}
	writeError(w, http.StatusNotFound, "incident not found")
}

func (s *Server) handleDeleteIncident(w http.ResponseWriter, r *http.Request) {
	id, _ := idVar(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, inc := range s.incidents {
		if inc.ID == id {
			s.incidents = append(s.incidents[:i], s.incidents[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "incident not found")
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]domain.UserAccount, 0, len(s.accounts))
	for id := int64(1); id <= s.nextUserID; id++ {
		if a, ok := s.accounts[id]; ok {
			out = append(out, a.UserAccount)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, _ := idVar(r, "id")
	s.mu.Lock()
	a, ok := s.accounts[id]
	var u domain.UserAccount
	if ok {
		u = a.UserAccount
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil || in.Password == "" {
		writeError(w, http.StatusBadRequest, "username, password, email and role are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	creator := claimsFrom(r).UserID

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Username == in.Username {
			writeError(w, http.StatusConflict, "username already exists")
			return
		}
	}
	u := s.addLocked(in, hash, true, &creator)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, _ := idVar(r, "id")
	var in domain.UserInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	a.Username, a.Email, a.Role = in.Username, in.Email, in.Role
	a.FirstName, a.LastName, a.Phone, a.BadgeNumber = in.FirstName, in.LastName, in.Phone, in.BadgeNumber
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		a.passwordHash = hash
	}
	writeJSON(w, http.StatusOK, a.UserAccount)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, _ := idVar(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	delete(s.accounts, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBoundary(w http.ResponseWriter, r *http.Request) {
	id, _ := idVar(r, "id")
	s.mu.Lock()
	g, ok := s.boundaries[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "boundary not found")
		return
	}
	writeJSON(w, http.StatusOK, domain.Boundary{UserID: id, Geometry: &g})
}

func (s *Server) handleCountByType(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	counts := make(map[string]int)
	for _, inc := range s.incidents {
		counts[inc.IncidentType]++
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, sortedCounts(counts))
}

func (s *Server) handleCountByPriority(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	counts := make(map[string]int)
	for _, inc := range s.incidents {
		counts[string(inc.Priority)]++
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, sortedCounts(counts))
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]domain.IncidentLocation, 0, len(s.incidents))
	for _, inc := range s.incidents {
		out = append(out, domain.IncidentLocation{Latitude: inc.Latitude, Longitude: inc.Longitude})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}
