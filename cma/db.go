package cma

import (
	"fmt"
	"strings"
)

const (
	// TblSamples is the name of the sql database table that contains the
	// position and value of every sampled candidate for each generation.
	TblSamples = "cmasamples"
	// TblGen is the name of the sql database table that contains the step
	// size, distribution mean and best value seen so far for each
	// generation.
	TblGen = "cmagen"
)

func (s *Search) initdb() error {
	if s.db == nil {
		return nil
	}

	stmts := []string{
		"CREATE TABLE IF NOT EXISTS " + TblSamples + " (trial INTEGER, iter INTEGER, idx INTEGER, rank INTEGER, val REAL" + s.xdbsql("define") + ");",
		"CREATE TABLE IF NOT EXISTS " + TblGen + " (trial INTEGER, iter INTEGER, sigma REAL, best REAL" + s.xdbsql("define") + ");",
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("cma: init trace db: %w", err)
		}
	}
	return nil
}

func (s *Search) xdbsql(op string) string {
	var b strings.Builder
	for i := 0; i < s.params.N; i++ {
		switch op {
		case "?":
			b.WriteString(",?")
		case "define":
			fmt.Fprintf(&b, ",x%v REAL", i)
		case "x":
			fmt.Fprintf(&b, ",x%v", i)
		default:
			panic("invalid db op " + op)
		}
	}
	return b.String()
}

func pos2iface(pos []float64) []interface{} {
	iface := make([]interface{}, 0, len(pos))
	for _, v := range pos {
		iface = append(iface, v)
	}
	return iface
}

// updateDb records the ranked population pop of the current generation
// along with the distribution it was sampled from.
func (s *Search) updateDb(pop Population) (err error) {
	if s.db == nil {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("cma: trace db: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			err = fmt.Errorf("cma: trace db: %w", err)
			return
		}
		err = tx.Commit()
	}()

	iter := s.st.gen + 1
	s0 := "INSERT INTO " + TblSamples + " (trial,iter,idx,rank,val" + s.xdbsql("x") + ") VALUES (?,?,?,?,?" + s.xdbsql("?") + ");"
	for rank, ind := range pop {
		args := []interface{}{s.trial, iter, ind.Index, rank, ind.Val}
		args = append(args, pos2iface(ind.X)...)
		if _, err := tx.Exec(s0, args...); err != nil {
			return err
		}
	}

	s1 := "INSERT INTO " + TblGen + " (trial,iter,sigma,best" + s.xdbsql("x") + ") VALUES (?,?,?,?" + s.xdbsql("?") + ");"
	args := []interface{}{s.trial, iter, s.st.sigma, s.best.Val}
	args = append(args, pos2iface(s.st.mean)...)
	_, err = tx.Exec(s1, args...)
	return err
}
