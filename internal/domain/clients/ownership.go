package clients

import "context"

// OwnerOf expone el ownerUserID de un cliente.
// Se usa para evitar ciclos de imports entre módulos (clients <-> anamnesis).
func (s *Service) OwnerOf(ctx context.Context, clientID string) (string, error) {
	c, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return "", err
	}
	return c.OwnerUserID, nil
}
