package commentservice

// buildThreads groups comments, given oldest first, into one-level threads. Top-level
// comments come back newest first and replies oldest first. Hidden comments are dropped, and
// so are replies whose parent is not a visible top-level comment.
func buildThreads(comments []Comment) []Thread {
	var top []Comment
	replies := make(map[int][]Comment)

	for _, c := range comments {
		if c.IsHidden {
			continue
		}

		if c.ParentID == nil {
			top = append(top, c)
			continue
		}

		replies[*c.ParentID] = append(replies[*c.ParentID], c)
	}

	threads := make([]Thread, 0, len(top))
	for i := len(top) - 1; i >= 0; i-- {
		r := replies[top[i].ID]
		if r == nil {
			r = []Comment{}
		}

		threads = append(threads, Thread{Comment: top[i], Replies: r})
	}

	return threads
}
