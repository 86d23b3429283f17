package deserialize

func (s *requiredState[K]) extend(c *decodedChunk[K], remaining int) error {
	n := min(remaining, s.left)

	if err := extendRequired(c, s.indices, n); err != nil {
		return err
	}

	s.left -= n

	return nil
}

func (s *optionalState[K]) extend(c *decodedChunk[K], remaining int) error {
	n := min(remaining, s.left)

	if err := extendOptional(c, s.validity, s.indices, n); err != nil {
		return err
	}

	s.left -= n

	return nil
}

func (s *filteredRequiredState[K]) extend(c *decodedChunk[K], remaining int) error {
	for remaining > 0 && s.filter.left > 0 {
		skip, take := s.filter.next(remaining)

		// skipped rows are decoded and discarded.
		if err := s.indices.skip(skip); err != nil {
			return err
		}

		if err := extendRequired(c, s.indices, take); err != nil {
			return err
		}

		remaining -= take
	}

	return nil
}

func (s *filteredOptionalState[K]) extend(c *decodedChunk[K], remaining int) error {
	for remaining > 0 && s.filter.left > 0 {
		skip, take := s.filter.next(remaining)

		// only the valid rows of a skipped range have an index to skip.
		valid, err := s.validity.countValid(skip)
		if err != nil {
			return err
		}

		if err := s.indices.skip(valid); err != nil {
			return err
		}

		if err := extendOptional(c, s.validity, s.indices, take); err != nil {
			return err
		}

		remaining -= take
	}

	return nil
}

func extendRequired[K Key](c *decodedChunk[K], indices *indexStream, n int) error {
	for i := 0; i < n; i++ {
		raw, err := indices.next()
		if err != nil {
			return err
		}

		k, err := narrow[K](raw)
		if err != nil {
			return err
		}

		c.pushValid(k)
	}

	return nil
}

// extendOptional merges the validity with the indices: a null row consumes
// no index.
func extendOptional[K Key](c *decodedChunk[K], validity *levelStream, indices *indexStream, n int) error {
	for i := 0; i < n; i++ {
		ok, err := validity.next()
		if err != nil {
			return err
		}

		if !ok {
			c.pushNull()
			continue
		}

		raw, err := indices.next()
		if err != nil {
			return err
		}

		k, err := narrow[K](raw)
		if err != nil {
			return err
		}

		c.pushValid(k)
	}

	return nil
}
