package plan

// decompositionPrompt is the prompt template for task decomposition.
// The response must be a machine-parseable JSON array; anything else is
// rejected by ParseResponse.
const decompositionPrompt = `Analyze this task and break it down into subtasks:
Task: %s
Context: %s

Return ONLY a JSON array of subtasks with this exact structure (no other text):
[
  {
    "id": "subtask-1",
    "description": "what to do",
    "worker_type": "researcher|executor|creator|designer|developer|analyst",
    "dependencies": ["ids of subtasks this depends on"],
    "priority": "low|medium|high|critical"
  }
]

Guidelines:
- ids must be unique (subtask-1, subtask-2, ...)
- dependencies may only reference ids present in the array
- dependencies must form a valid DAG (no cycles)
- subtasks should be as independent as possible to allow parallel execution
- use an empty array [] for dependencies when there are none
- pick the single worker type best suited to each subtask`
