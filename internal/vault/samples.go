package vault

import "github.com/starford/echonotes/internal/models"

// SampleFolders are the folders a fresh dashboard starts with.
func SampleFolders() []models.Folder {
	return []models.Folder{
		{ID: "1", Name: "Personal"},
		{ID: "2", Name: "Work"},
		{ID: "3", Name: "Research"},
	}
}

// SampleNotes are written to an empty vault on first start.
func SampleNotes() []models.Note {
	return []models.Note{
		{
			ID:       "101",
			Title:    "Travel Plans 2025",
			Excerpt:  "Ideas for next year's vacation destinations...",
			Updated:  "2 days ago",
			Content:  "Planning my travels for next year. Considering Japan in spring for cherry blossoms, Portugal in summer, and perhaps New Zealand in the fall. Will need to check my Reading List for travel guides.",
			Tags:     []string{"travel", "planning", "2025"},
			FolderID: "1",
		},
		{
			ID:       "102",
			Title:    "Reading List",
			Excerpt:  "Books I want to read this year...",
			Updated:  "1 week ago",
			Content:  "Books to read:\n- Dune by Frank Herbert\n- Project Hail Mary by Andy Weir\n- The Psychology of Money by Morgan Housel\n- Four Thousand Weeks by Oliver Burkeman\n- Travel guides for my Travel Plans 2025",
			Tags:     []string{"books", "reading", "personal"},
			FolderID: "1",
		},
		{
			ID:       "201",
			Title:    "Project Delta Notes",
			Excerpt:  "Meeting notes and key decisions for Project Delta...",
			Updated:  "1 day ago",
			Content:  "Project Delta kickoff meeting notes:\n- Timeline: 6 months\n- Budget: $120,000\n- Key stakeholders: Marketing, Product, Engineering\n\nNext steps: Set up weekly sync meetings and create project plan. Refer to Weekly Goals for priorities.",
			Tags:     []string{"work", "meetings", "project-delta"},
			FolderID: "2",
		},
		{
			ID:       "202",
			Title:    "Weekly Goals",
			Excerpt:  "Setting objectives for the upcoming sprint...",
			Updated:  "3 days ago",
			Content:  "Sprint goals for next week:\n1. Finish API documentation\n2. Review pull requests for auth feature\n3. Prepare demo for stakeholders\n4. Schedule 1:1s with team members\n5. Update Project Delta Notes with progress",
			Tags:     []string{"work", "goals", "planning"},
			FolderID: "2",
		},
		{
			ID:       "203",
			Title:    "Interview Questions",
			Excerpt:  "Questions to ask candidates during interviews...",
			Updated:  "2 weeks ago",
			Content:  "Technical interview questions:\n- Explain the difference between var, let, and const\n- How does React's virtual DOM work?\n- Describe a challenging project you worked on\n- How do you handle conflicts in a team?\n\nCoding challenge ideas: implement a basic todo app",
			Tags:     []string{"work", "interviews", "hiring"},
			FolderID: "2",
		},
		{
			ID:       "301",
			Title:    "Graph Theory",
			Excerpt:  "Notes on directed acyclic graphs and applications...",
			Updated:  "4 days ago",
			Content:  "Graph theory study notes:\n\nA directed acyclic graph (DAG) is a finite directed graph with no directed cycles.\n\nApplications:\n- Data processing networks\n- Scheduling problems\n- Causal structures\n\nProperties:\n- Has at least one topological ordering\n- Can represent partial orderings",
			Tags:     []string{"research", "math", "computer-science"},
			FolderID: "3",
		},
		{
			ID:       "302",
			Title:    "Machine Learning Papers",
			Excerpt:  "Summaries of recent research papers on ML techniques...",
			Updated:  "1 month ago",
			Content:  "Recent papers to review:\n\n1. \"Attention Is All You Need\" - Transformer architecture fundamentals\n2. \"BERT: Pre-training of Deep Bidirectional Transformers for Language Understanding\"\n3. \"Deep Residual Learning for Image Recognition\" - ResNet architecture\n\nKey concepts to explore: attention mechanisms, transfer learning, few-shot learning. Related to Graph Theory concepts.",
			Tags:     []string{"research", "machine-learning", "papers"},
			FolderID: "3",
		},
	}
}
